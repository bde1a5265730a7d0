package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"

	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

// A small dataset covering the awkward cases: a numberless row, a duplicate
// name in different casing, a dangling successor and a spill column.
const verifyCSV = `Number,Name,Stage,Attribute,Evolutions,Unnamed: 5
1,Koromon,Baby II,Free,Agumon,
2,Agumon,Child,Vaccine,Greymon,Tyranomon
3,Greymon,Adult,Vaccine,,
,agumon,Adult,Virus,Devimon,
`

func main() {
	_ = godotenv.Load()

	// 1. Write the synthetic dataset
	dir, err := os.MkdirTemp("", "digivolve-verify-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "digimon.csv")
	if err := os.WriteFile(path, []byte(verifyCSV), 0644); err != nil {
		log.Fatal(err)
	}

	// 2. Load it
	fmt.Println("Loading dataset...")
	tbl, err := dataset.Load(path)
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	fmt.Printf("Total Rows: %d\n", tbl.Len())
	if tbl.Len() != 4 {
		log.Fatalf("Expected 4 rows, got %d", tbl.Len())
	}

	r := evolution.NewResolver(tbl)

	// 3. Case-insensitive resolution returns the same outcome
	fmt.Println("Checking case-insensitive resolution...")
	a := r.Resolve("Koromon")
	b := r.Resolve("  koROMON ")
	if !reflect.DeepEqual(a, b) {
		log.Fatal("Resolve is not case-insensitive")
	}
	single, ok := a.(evolution.Single)
	if !ok {
		log.Fatalf("Expected Single for Koromon, got %T", a)
	}
	if single.Entry.Current.Name != "Koromon" {
		log.Fatalf("Expected stored casing Koromon, got %s", single.Entry.Current.Name)
	}

	// 4. Duplicate names resolve to Multiple
	fmt.Println("Checking duplicate names...")
	if m, ok := r.Resolve("AGUMON").(evolution.Multiple); !ok {
		log.Fatal("Expected Multiple for duplicated Agumon")
	} else if len(m.Entries) != 2 {
		log.Fatalf("Expected 2 entries, got %d", len(m.Entries))
	} else if m.Entries[1].Current.Number != nil {
		log.Fatal("Expected nil number for the numberless agumon row")
	}

	// 5. Reflexive edges: every successor with a row lists the source back
	fmt.Println("Checking reflexive edges...")
	for _, row := range tbl.AllRows() {
		for _, succ := range row.Evolutions {
			if len(tbl.RowsByName(succ)) == 0 {
				continue // dangling, checked below
			}
			preds := r.FindPredecessors(succ)
			found := false
			for _, p := range preds {
				if strings.EqualFold(p.Name, row.Name) {
					found = true
					break
				}
			}
			if !found {
				log.Fatalf("Edge %s -> %s not visible from the successor side", row.Name, succ)
			}
		}
	}

	// 6. Dangling successors come back as stubs
	fmt.Println("Checking stub successors...")
	agumon := r.Resolve("Agumon").(evolution.Multiple)
	var stub *evolution.Ref
	for _, ref := range agumon.Entries[0].Successors {
		if ref.Name == "Tyranomon" {
			stub = &ref
			break
		}
	}
	if stub == nil {
		log.Fatal("Expected Tyranomon stub successor")
	}
	if stub.Stage != nil || stub.Number != nil {
		log.Fatal("Stub successor must carry nil stage and number")
	}

	dangling := r.Dangling()
	fmt.Printf("Dangling references: %v\n", dangling)
	if len(dangling) != 2 { // Tyranomon and Devimon
		log.Fatalf("Expected 2 dangling references, got %d", len(dangling))
	}

	// 7. Misses echo the query and never error
	fmt.Println("Checking miss behavior...")
	nf, ok := r.Resolve("Missingmon").(evolution.NotFound)
	if !ok {
		log.Fatal("Expected NotFound for Missingmon")
	}
	if nf.Queried != "Missingmon" {
		log.Fatalf("Expected query echoed verbatim, got %q", nf.Queried)
	}

	// 8. Wire shape spot checks
	fmt.Println("Checking JSON shapes...")
	out, err := json.Marshal(r.Resolve("Greymon"))
	if err != nil {
		log.Fatal(err)
	}
	for _, want := range []string{`"currentDigimon"`, `"preEvolutions"`, `"postEvolutions":[]`} {
		if !strings.Contains(string(out), want) {
			log.Fatalf("Expected %s in %s", want, out)
		}
	}
	out, err = json.Marshal(r.Resolve("Missingmon"))
	if err != nil {
		log.Fatal(err)
	}
	if !strings.Contains(string(out), `"error":true`) {
		log.Fatalf("Expected error flag in %s", out)
	}

	fmt.Println("Verification SUCCESS!")
}
