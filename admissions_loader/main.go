package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	configPath := flag.String("config", "", "YAML config file with sources and db_url")
	sourceName := flag.String("source", "", "Named source from the config file (default: first entry)")
	inputFile := flag.String("file", "", "Input file (.csv or .json); overrides -config/-source")
	pgConn := flag.String("pg", "", "PostgreSQL connection string; overrides config db_url")
	outFile := flag.String("out", "", "Optional Parquet snapshot of the admissions table")
	logFile := flag.String("log", "", "Optional log file (appended, in addition to stderr)")
	flag.Parse()

	if err := run(*configPath, *sourceName, *inputFile, *pgConn, *outFile, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, sourceName, inputFile, pgConn, outFile, logFile string) error {
	if err := initLogger(logFile); err != nil {
		return err
	}

	path := inputFile
	connStr := pgConn

	if path == "" {
		if configPath == "" {
			return fmt.Errorf("either -file or -config is required")
		}
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		var src *SourceConfig
		if sourceName != "" {
			src, err = cfg.Source(sourceName)
			if err != nil {
				return err
			}
		} else if len(cfg.Sources) > 0 {
			src = &cfg.Sources[0]
		} else {
			return fmt.Errorf("config %s declares no sources", configPath)
		}
		path = src.Path
		if connStr == "" {
			connStr = cfg.Defaults.DBUrl
		}
	}

	start := time.Now()
	log.Infof("pipeline: reading %s", path)

	table, err := ReadTable(path)
	if err != nil {
		return err
	}
	log.Infof("pipeline: %d raw row(s), %d column(s)", len(table.Rows), len(table.Headers))

	ds, err := Clean(table)
	if err != nil {
		return err
	}

	tables, err := Transform(ds)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := WriteSnapshot(outFile, tables); err != nil {
			return err
		}
	}

	if connStr != "" {
		if err := LoadPostgres(context.Background(), connStr, tables); err != nil {
			return err
		}
	} else {
		log.Warn("pipeline: no database configured, skipping load")
	}

	log.Infof("pipeline: done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
