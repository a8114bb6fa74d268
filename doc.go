// Package rowtmpl renders the rows of tabular files into text templates,
// typically to emit SQL statements for bulk data migration.
//
// A template is plain text with {name} placeholders. A placeholder may carry
// a type hint, {name:type}, that coerces the cell before substitution:
//
//	INSERT INTO products (id, name, price) VALUES ({ID:int}, '{NAME}', {PRICE:decimal});
//
// # Features
//
//   - Read Excel (XLSX) sheets and dBase (DBF) tables, plus CSV, TSV, Parquet and SQLite
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Charset detection for legacy DBF files
//   - Lazy rendering: rows are produced one at a time as an iter.Seq2
//   - Built-in type hints int, float, decimal, str and bool, extensible with a Registry
//   - SQL single-quote escaping by default, pluggable escapers
//
// # Basic Usage
//
// The simplest way to use rowtmpl is with the ConvertFile function:
//
//	tmpl := "INSERT INTO users VALUES ({ID:int}, '{NAME}');"
//	for stmt, err := range rowtmpl.ConvertFile(ctx, "users.xlsx", tmpl, rowtmpl.NewConvertOptions()) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(stmt)
//	}
//
// # Advanced Usage
//
// A Converter applies an error policy and writes the rendered rows:
//
//	conv := rowtmpl.NewConverter(
//	    rowtmpl.WithLogger(logger),
//	    rowtmpl.WithErrorPolicy(rowtmpl.ErrorPolicySkip),
//	)
//	stats, err := conv.Run(ctx, "legacy.dbf", tmpl, os.Stdout)
//
// # Blank Values
//
// A cell that is empty after escaping is replaced by the text null before any
// type hint is applied, so '{NAME}' renders as 'null' and a blank cell tagged
// int fails with a TypeConversionError. Set the replacement with
// RenderOptions.WithIfNone.
//
// # Errors
//
// Rendering a record that lacks a referenced field fails with a
// MissingFieldError before anything is substituted. Type hints that reject a
// value fail with a TypeConversionError. Both are reported per record so the
// caller can skip the row or stop.
package rowtmpl
