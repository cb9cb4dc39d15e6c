// seed_master genera un script SQL para cargar datos maestros (ubicaciones, ítems y proveedores)
// a partir de un CSV exportado del sistema de compras.
//
// Uso: go run ./cmd/seed_master [-latin1] [-out archivo.sql] maestros.csv
//
// Columnas: kind,code,name,attr,extra
//   - location: attr = KITCHEN | STORE | CENTRAL | WAREHOUSE
//   - item:     attr = unidad, extra = categoría
//   - supplier: attr y extra vacíos
//
// Los IDs se derivan del código (UUID v5) para que el script sea reejecutable.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Espacio de nombres para los UUID v5 de datos maestros.
var masterNamespace = uuid.MustParse("6f1d8c2e-5b7a-4e0c-9a43-2d51c0e7b8a1")

var locationTypes = map[string]bool{"KITCHEN": true, "STORE": true, "CENTRAL": true, "WAREHOUSE": true}

type record struct {
	kind, code, name, attr, extra string
}

type counts struct {
	locations, items, suppliers int
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	outPath := flag.String("out", "seed_master.sql", "archivo SQL de salida")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_master [-latin1] [-out archivo.sql] maestros.csv")
		os.Exit(2)
	}

	in, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	n, err := generate(in, *latin1, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ubicaciones, %d ítems, %d proveedores\n", *outPath, n.locations, n.items, n.suppliers)
}

// generate lee el CSV y escribe los INSERT ... ON CONFLICT agrupados por tabla.
func generate(r io.Reader, latin1 bool, w io.Writer) (counts, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	records, err := readRecords(r)
	if err != nil {
		return counts{}, err
	}

	var n counts
	var b strings.Builder
	b.WriteString("-- Datos maestros generados por cmd/seed_master\n\n")
	for _, rec := range records {
		id := uuid.NewSHA1(masterNamespace, []byte(rec.kind+":"+rec.code)).String()
		switch rec.kind {
		case "location":
			fmt.Fprintf(&b, "INSERT INTO locations (id, code, name, type) VALUES ('%s', '%s', '%s', '%s')\n",
				id, escapeSQL(rec.code), escapeSQL(rec.name), rec.attr)
			b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type, updated_at = NOW();\n")
			n.locations++
		case "item":
			unit := rec.attr
			if unit == "" {
				unit = "UN"
			}
			fmt.Fprintf(&b, "INSERT INTO items (id, code, name, unit, category) VALUES ('%s', '%s', '%s', '%s', '%s')\n",
				id, escapeSQL(rec.code), escapeSQL(rec.name), escapeSQL(unit), escapeSQL(rec.extra))
			b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, unit = EXCLUDED.unit, category = EXCLUDED.category, updated_at = NOW();\n")
			n.items++
		case "supplier":
			fmt.Fprintf(&b, "INSERT INTO suppliers (id, code, name) VALUES ('%s', '%s', '%s')\n",
				id, escapeSQL(rec.code), escapeSQL(rec.name))
			b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;\n")
			n.suppliers++
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return counts{}, err
	}
	return n, nil
}

func readRecords(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []record
	seen := make(map[string]int)
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "kind") {
			continue
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		for len(row) < 5 {
			row = append(row, "")
		}
		rec := record{
			kind:  strings.ToLower(strings.TrimSpace(row[0])),
			code:  strings.ToUpper(strings.TrimSpace(row[1])),
			name:  strings.TrimSpace(row[2]),
			attr:  strings.TrimSpace(row[3]),
			extra: strings.TrimSpace(row[4]),
		}
		if rec.code == "" || rec.name == "" {
			return nil, fmt.Errorf("línea %d: código y nombre son obligatorios", line)
		}
		switch rec.kind {
		case "location":
			rec.attr = strings.ToUpper(rec.attr)
			if !locationTypes[rec.attr] {
				return nil, fmt.Errorf("línea %d: tipo de ubicación %q inválido", line, rec.attr)
			}
		case "item", "supplier":
		default:
			return nil, fmt.Errorf("línea %d: tipo de registro %q desconocido", line, rec.kind)
		}
		key := rec.kind + ":" + rec.code
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("línea %d: %s %s duplicado (línea %d)", line, rec.kind, rec.code, prev)
		}
		seen[key] = line
		out = append(out, rec)
	}
	return out, nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
