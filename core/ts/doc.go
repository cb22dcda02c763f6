// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package ts reads and writes Qt Linguist translation source (.ts) files.

A .ts file is an XML document with a <TS> root that holds an ordered list of
contexts, each grouping the messages of one UI class:

	<TS version="2.1" language="es_ES">
	<context>
	    <name>Core::Internal::MainWindow</name>
	    <message>
	        <source>&amp;Open File...</source>
	        <translation>&amp;Abrir archivo...</translation>
	    </message>
	</context>
	</TS>

# Decoding

[Decode] is a streaming decoder built on encoding/xml. It accepts TS
versions 1.1, 2.0 and 2.1, resolves <byte value="xNN"/> escapes, joins
<lengthvariant> children with [VariantSeparator], and rejects unknown
elements. Every failure is reported as a [*ParseError] carrying the line and
column of the offending token.

# Encoding

[Encode] writes the layout Qt Linguist itself produces: four-space
indentation, one element per line, XML entity escaping and <byte/> escapes
for control characters. Decoding the output of Encode yields the same
message tuples as the input.

# Contexts

A file may repeat a context name. [File.Lookup] and [File.All] treat
repeated contexts as one, and [File.MergeContexts] folds them together in
place.
*/
package ts
