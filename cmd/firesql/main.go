package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/bennycheung/PyFireSQL/firesql/executor"
	"github.com/bennycheung/PyFireSQL/firesql/render"
	"github.com/bennycheung/PyFireSQL/firesql/storage"
)

func main() {
	var dbPath string
	var queryStr string
	var inputPath string
	var format string
	var interactive bool
	var verbose bool
	var help bool

	flag.StringVar(&dbPath, "db", "", "database path")
	flag.StringVar(&queryStr, "query", "", "run a single statement and exit")
	flag.StringVar(&inputPath, "input", "", "run statements from a file, separated by semicolons")
	flag.StringVar(&format, "format", render.FormatTable, "output format: csv, json, or table")
	flag.BoolVar(&interactive, "i", false, "interactive mode")
	flag.BoolVar(&verbose, "verbose", false, "verbose mode (log execution details)")
	flag.BoolVar(&help, "h", false, "show help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [database_path]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A SQL query engine over a schemaless document store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i mydata.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -db mydata.db -query 'SELECT * FROM Users'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -db mydata.db -input queries.sql -format csv\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	if dbPath == "" && flag.NArg() > 0 {
		dbPath = flag.Arg(0)
	}
	if dbPath == "" {
		dbPath = "firesql.db"
	}

	printer, err := render.NewPrinter(format)
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewNop()
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		logger, err = cfg.Build()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
	}
	defer logger.Sync()

	store, err := storage.NewBadgerStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	engine := executor.NewEngine(store, executor.WithLogger(logger))

	switch {
	case queryStr != "":
		if err := runStatement(engine, printer, queryStr, true); err != nil {
			os.Exit(1)
		}
	case inputPath != "":
		runFile(engine, printer, inputPath)
	case interactive:
		runInteractive(engine, printer)
	default:
		flag.Usage()
		os.Exit(1)
	}
}

func runStatement(engine *executor.Engine, printer *render.Printer, text string, timed bool) error {
	start := time.Now()
	rows, err := engine.Execute(context.Background(), text)
	elapsed := time.Since(start)

	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "%v\n", err)
		return err
	}

	if err := printer.Print(os.Stdout, engine.SelectFields(), rows); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	if timed {
		fmt.Printf("(%.3fms)\n", float64(elapsed.Microseconds())/1000.0)
	}
	return nil
}

func runFile(engine *executor.Engine, printer *render.Printer, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	for _, stmt := range splitStatements(string(data)) {
		runStatement(engine, printer, stmt, false)
	}
}

func runInteractive(engine *executor.Engine, printer *render.Printer) {
	fmt.Println("=== FireSQL Interactive Mode ===")
	fmt.Println("Commands:")
	fmt.Println("  .help    - Show help")
	fmt.Println("  .exit    - Exit")
	fmt.Println("  SELECT/INSERT/UPDATE/DELETE ...; - Run a statement")
	fmt.Println()

	prompt := color.New(color.FgCyan)
	scanner := bufio.NewScanner(os.Stdin)

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			prompt.Print("firesql> ")
		} else {
			prompt.Print("      -> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if buffer.Len() == 0 {
			switch line {
			case "":
				continue
			case ".exit":
				return
			case ".help":
				fmt.Println("Enter a SQL statement terminated by a semicolon.")
				continue
			}
		}

		buffer.WriteString(line)
		buffer.WriteString("\n")
		if !strings.Contains(line, ";") {
			continue
		}

		for _, stmt := range splitStatements(buffer.String()) {
			runStatement(engine, printer, stmt, true)
		}
		buffer.Reset()
	}
}

// splitStatements breaks input text on semicolons, dropping empties
// and SQL line comments. Semicolons inside quoted strings are not
// statement separators.
func splitStatements(text string) []string {
	var stmts []string
	var current strings.Builder
	var quote rune

	for _, line := range strings.Split(text, "\n") {
		if quote == 0 && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for _, r := range line {
			switch {
			case quote != 0:
				current.WriteRune(r)
				if r == quote {
					quote = 0
				}
			case r == '\'' || r == '"':
				quote = r
				current.WriteRune(r)
			case r == ';':
				if stmt := strings.TrimSpace(current.String()); stmt != "" {
					stmts = append(stmts, stmt)
				}
				current.Reset()
			default:
				current.WriteRune(r)
			}
		}
		current.WriteString("\n")
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}
