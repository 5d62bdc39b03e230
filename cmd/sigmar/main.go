// Command sigmar runs the smoothed density variance stage against a stored
// or file-based power spectrum and reports the resulting sigma²(R,z) table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cosmogrid/sigmar/internal/blockdb"
	"github.com/cosmogrid/sigmar/internal/config"
	"github.com/cosmogrid/sigmar/internal/cosmo"
	"github.com/cosmogrid/sigmar/internal/datablock"
	"github.com/cosmogrid/sigmar/internal/pipeline"
	"github.com/cosmogrid/sigmar/internal/report"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: sigmar <command> [flags]

Commands:
  compute   run the variance stage against a spectrum block
  blocks    list blocks stored in a block database
  migrate   manage the block database schema (up, down, status)

Run 'sigmar <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compute":
		runCompute(os.Args[2:])
	case "blocks":
		runBlocks(os.Args[2:])
	case "migrate":
		runMigrate(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func runCompute(args []string) {
	fs := flag.NewFlagSet("compute", flag.ExitOnError)
	optionsPath := fs.String("options", "", "path to options JSON (defaults apply when empty)")
	gridPath := fs.String("in", "", "spectrum grid JSON file (k_h, z, p_k)")
	dbPath := fs.String("db", "", "block database path")
	blockID := fs.String("block", "", "block ID to load from the database")
	save := fs.Bool("save", false, "save the result block back to the database")
	label := fs.String("label", "sigma_r", "label for the saved result block")
	pngPath := fs.String("png", "", "write a PNG plot of sigma²(R) to this path")
	htmlPath := fs.String("html", "", "write an HTML chart of sigma²(R) to this path")
	fs.Parse(args)

	opts := &config.Options{}
	if *optionsPath != "" {
		loaded, err := config.Load(*optionsPath)
		if err != nil {
			log.Fatalf("load options: %v", err)
		}
		opts = loaded
	}

	module, err := pipeline.Setup(opts)
	if err != nil {
		log.Fatalf("setup variance stage: %v", err)
	}

	var (
		block *datablock.Block
		db    *blockdb.DB
	)
	switch {
	case *gridPath != "":
		block, err = loadGridJSON(*gridPath, module.SourceSection())
		if err != nil {
			log.Fatalf("load spectrum grid: %v", err)
		}
	case *dbPath != "" && *blockID != "":
		db, err = blockdb.Open(*dbPath)
		if err != nil {
			log.Fatalf("open block database: %v", err)
		}
		defer db.Close()
		block, err = db.LoadBlock(*blockID)
		if err != nil {
			log.Fatalf("load block: %v", err)
		}
	default:
		log.Fatal("need either -in <grid.json> or -db <path> -block <id>")
	}

	if err := module.Execute(block); err != nil {
		log.Fatalf("variance stage failed: %v", err)
	}

	table, err := tableFromBlock(block)
	if err != nil {
		log.Fatalf("read result section: %v", err)
	}
	printSummary(table)

	if *save {
		if db == nil {
			if *dbPath == "" {
				log.Fatal("-save needs -db <path>")
			}
			db, err = blockdb.Open(*dbPath)
			if err != nil {
				log.Fatalf("open block database: %v", err)
			}
			defer db.Close()
			if err := db.MigrateUp(); err != nil {
				log.Fatalf("prepare block database: %v", err)
			}
		}
		id, err := db.SaveBlock(block, *label)
		if err != nil {
			log.Fatalf("save result block: %v", err)
		}
		fmt.Printf("saved block %s\n", id)
	}

	if *pngPath != "" {
		if err := report.SavePNG(table, *pngPath); err != nil {
			log.Fatalf("write PNG: %v", err)
		}
		fmt.Printf("wrote %s\n", *pngPath)
	}
	if *htmlPath != "" {
		if err := report.SaveHTML(table, *htmlPath); err != nil {
			log.Fatalf("write HTML: %v", err)
		}
		fmt.Printf("wrote %s\n", *htmlPath)
	}
}

func runBlocks(args []string) {
	fs := flag.NewFlagSet("blocks", flag.ExitOnError)
	dbPath := fs.String("db", "", "block database path")
	fs.Parse(args)

	if *dbPath == "" {
		log.Fatal("need -db <path>")
	}
	db, err := blockdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("open block database: %v", err)
	}
	defer db.Close()

	infos, err := db.ListBlocks()
	if err != nil {
		log.Fatalf("list blocks: %v", err)
	}
	if len(infos) == 0 {
		fmt.Println("no blocks stored")
		return
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  %s\n", info.ID, info.CreatedAt.Format("2006-01-02 15:04:05"), info.Label)
	}
}

func runMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", "", "block database path")
	fs.Parse(args)

	if *dbPath == "" || fs.NArg() < 1 {
		log.Fatal("usage: sigmar migrate -db <path> <up|down|status>")
	}
	db, err := blockdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("open block database: %v", err)
	}
	defer db.Close()

	switch action := fs.Arg(0); action {
	case "up":
		if err := db.MigrateUp(); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		fmt.Println("schema is up to date")
	case "down":
		if err := db.MigrateDown(); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		fmt.Println("rolled back one migration")
	case "status":
		version, dirty, err := db.MigrateVersion()
		if err != nil {
			log.Fatalf("migrate status: %v", err)
		}
		fmt.Printf("schema version %d (dirty: %v)\n", version, dirty)
	default:
		log.Fatalf("unknown migrate action %q", action)
	}
}

// gridFile is the JSON layout for a file-based spectrum: p_k rows are
// indexed by k, columns by z.
type gridFile struct {
	KH []float64   `json:"k_h"`
	Z  []float64   `json:"z"`
	PK [][]float64 `json:"p_k"`
}

func loadGridJSON(path, section string) (*datablock.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var gf gridFile
	if err := json.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(gf.PK) != len(gf.KH) {
		return nil, fmt.Errorf("p_k has %d rows, want %d (one per k)", len(gf.PK), len(gf.KH))
	}

	pk := datablock.NewGrid2D(len(gf.KH), len(gf.Z))
	for i, row := range gf.PK {
		if len(row) != len(gf.Z) {
			return nil, fmt.Errorf("p_k row %d has %d columns, want %d (one per z)", i, len(row), len(gf.Z))
		}
		for j, v := range row {
			pk.Set(i, j, v)
		}
	}

	block := datablock.NewBlock()
	src := block.Section(section)
	src.PutVector(datablock.KeyKH, gf.KH)
	src.PutVector(datablock.KeyZ, gf.Z)
	src.PutGrid(datablock.KeyPK, pk)
	return block, nil
}

// tableFromBlock reconstructs the variance table from the sigma_r section.
func tableFromBlock(block *datablock.Block) (*cosmo.VarianceTable, error) {
	out := block.Section(datablock.SectionSigmaR)
	r, err := out.Vector(datablock.KeyR)
	if err != nil {
		return nil, err
	}
	zs, err := out.Vector(datablock.KeyZ)
	if err != nil {
		return nil, err
	}
	grid, err := out.Grid(datablock.KeySigma2)
	if err != nil {
		return nil, err
	}

	table := &cosmo.VarianceTable{R: r, Z: zs, Sigma2: make([][]float64, len(r))}
	for i := range r {
		row := make([]float64, len(zs))
		for j := range zs {
			row[j] = grid.At(i, j)
		}
		table.Sigma2[i] = row
	}
	return table, nil
}

func printSummary(table *cosmo.VarianceTable) {
	fmt.Printf("sigma² on %d scales x %d redshifts\n", len(table.R), len(table.Z))
	for j, z := range table.Z {
		fmt.Printf("  z = %-6g sigma²(R=%g) = %.6g  sigma²(R=%g) = %.6g\n",
			z, table.R[0], table.Sigma2[0][j],
			table.R[len(table.R)-1], table.Sigma2[len(table.R)-1][j])
	}
}
