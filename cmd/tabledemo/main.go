package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gnemet/dyntable"
	"github.com/gnemet/dyntable/database/queryset"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Application struct {
		Name     string `yaml:"name"`
		Version  string `yaml:"version"`
		Language string `yaml:"language"`
	} `yaml:"application"`

	Database []struct {
		Name     string `yaml:"name"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		Schema   string `yaml:"schema"`
		Default  bool   `yaml:"default"`
	} `yaml:"database"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	Table struct {
		Object  string   `yaml:"object"`
		OrderBy string   `yaml:"order_by"`
		Exclude []string `yaml:"exclude"`
		Limit   int      `yaml:"limit"`
	} `yaml:"table"`
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load() // Ignore error as it might not exist in prod

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, err
	}

	// Expand env vars in YAML
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lang := cfg.Application.Language
	if lang == "" {
		lang = "en"
	}

	cat, err := dyntable.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	object := cfg.Table.Object
	if object == "" {
		object = cat.Objects[0].Name
	}

	schemas := cat.Schemas(lang)
	schema, ok := schemas.Schema(object)
	if !ok {
		log.Fatalf("Object %q not found in catalog", object)
	}

	dyntable.SetDiagnostics(slog.Default())
	def := dyntable.MustDefine(object, dyntable.Options{
		Schema:  schema,
		Schemas: schemas,
		Exclude: cfg.Table.Exclude,
	})

	data := bindData(cfg, def, schema, object)
	table := def.New(data, cfg.Table.OrderBy, nil)

	rows := fetchRows(table)
	printTable(table, rows)
}

// bindData binds a Postgres query set when a default database is
// configured, or sample rows otherwise.
func bindData(cfg *Config, def *dyntable.Definition, schema *dyntable.Schema, object string) any {
	for _, d := range cfg.Database {
		if !d.Default {
			continue
		}
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable search_path=%s,public",
			d.Host, d.Port, d.User, d.Password, d.Database, d.Schema)
		db, err := sql.Open("postgres", connStr)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Printf("Database unreachable, using sample rows: %v", err)
			break
		}

		columns := []string{}
		for _, col := range def.Columns() {
			columns = append(columns, col.Name)
		}
		return queryset.New(db, object, columns...).Page(cfg.Table.Limit, 0)
	}
	return sampleRows(schema)
}

// sampleRows fabricates a few rows so the demo renders without a
// database.
func sampleRows(schema *dyntable.Schema) []map[string]any {
	rows := []map[string]any{}
	for i := 1; i <= 3; i++ {
		row := map[string]any{}
		for _, f := range schema.Fields() {
			if f.Kind == dyntable.KindInteger || f.Kind == dyntable.KindAuto {
				row[f.Name] = i
			} else {
				row[f.Name] = fmt.Sprintf("%s %d", f.Name, i)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func fetchRows(table *dyntable.Table) []map[string]any {
	switch data := table.Data.(type) {
	case *queryset.QuerySet:
		rows, err := data.Fetch(context.Background())
		if err != nil {
			log.Fatalf("Fetch failed: %v", err)
		}
		return rows
	case []map[string]any:
		return data
	default:
		return nil
	}
}

func printTable(table *dyntable.Table, rows []map[string]any) {
	fmt.Println(strings.Join(table.Headers(), " | "))
	for i, row := range rows {
		cells := []string{}
		for _, col := range table.Columns {
			cells = append(cells, string(table.Render(row, col, i)))
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	if table.Ordering != "" {
		clauses := []string{}
		for _, term := range table.OrderBy {
			clauses = append(clauses, term.SQL())
		}
		fmt.Printf("\n-- ordered by: %s (%s)\n", table.Ordering, strings.Join(clauses, ", "))
	}
}
