package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/proptalk/proptalk/internal/config"
	"github.com/proptalk/proptalk/internal/dataset"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/search"
	"github.com/proptalk/proptalk/internal/utils"
)

func main() {
	app := &cli.App{
		Name:  "proptalk",
		Usage: "Inspect the property inventory and run searches from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Usage:   "Path to the inventory file (overrides DATASET_PATH)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "inspect",
				Usage:  "Print columns, row count and the first rows",
				Action: inspectCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "rows",
						Aliases: []string{"n"},
						Usage:   "How many rows to print",
						Value:   3,
					},
				},
			},
			{
				Name:   "inventory",
				Usage:  "Summarize locations, developers and the price span",
				Action: inventoryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top",
						Usage: "How many locations and developers to list",
						Value: 10,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Rank the inventory against criteria",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "keywords",
						Aliases: []string{"k"},
						Usage:   "Keyword to match (repeatable)",
					},
					&cli.Float64Flag{
						Name:  "max-price",
						Usage: "Upper bound on price per sqft",
					},
					&cli.Float64Flag{
						Name:  "min-price",
						Usage: "Lower bound on price per sqft",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Result cap",
						Value:   search.DefaultLimit,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadTable reads the inventory the server would use, with an optional path
// override from the --dataset flag.
func loadTable(c *cli.Context) (*dataset.Table, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if path := c.String("dataset"); path != "" {
		cfg.Dataset.Path = path
		switch {
		case strings.HasSuffix(path, ".csv"):
			cfg.Dataset.Source = "csv"
		case strings.HasSuffix(path, ".xlsx"):
			cfg.Dataset.Source = "xlsx"
		}
	}

	table, err := dataset.Load(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return table, nil
}

func inspectCommand(c *cli.Context) error {
	table, err := loadTable(c)
	if err != nil {
		return err
	}

	fmt.Printf("Source:  %s\n", table.Source())
	fmt.Printf("Rows:    %d\n", table.Len())
	fmt.Printf("Columns: %s\n\n", strings.Join(table.Columns(), ", "))

	for i, rec := range table.Page(c.Int("rows"), 0) {
		pretty, err := utils.PrettyPrintJSON(rec)
		if err != nil {
			return fmt.Errorf("render row %d: %w", i+1, err)
		}
		fmt.Printf("Row %d:\n%s\n\n", i+1, pretty)
	}
	return nil
}

func inventoryCommand(c *cli.Context) error {
	table, err := loadTable(c)
	if err != nil {
		return err
	}

	top := c.Int("top")
	records := table.Records()
	fmt.Printf("Rows: %d\n\n", len(records))

	fmt.Println("Top locations:")
	printCounts(countField(records, func(r model.PropertyRecord) string { return r.Location }), top)

	fmt.Println("\nTop developers:")
	printCounts(countField(records, func(r model.PropertyRecord) string { return r.Developer }), top)

	lo, hi, priced := priceSpan(records)
	if priced > 0 {
		fmt.Printf("\nPrice per sqft: %.0f to %.0f across %d priced rows\n", lo, hi, priced)
	} else {
		fmt.Println("\nNo parsable prices in the dataset")
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	table, err := loadTable(c)
	if err != nil {
		return err
	}

	criteria := model.SearchCriteria{Keywords: c.StringSlice("keywords")}
	if c.IsSet("max-price") {
		v := c.Float64("max-price")
		criteria.MaxPrice = &v
	}
	if c.IsSet("min-price") {
		v := c.Float64("min-price")
		criteria.MinPrice = &v
	}

	engine := search.NewEngine(table.Records(), nil, nil)

	if weights := engine.KeywordWeights(criteria.Keywords); len(weights) > 0 {
		keywords := make([]string, 0, len(weights))
		for kw := range weights {
			keywords = append(keywords, kw)
		}
		sort.Strings(keywords)

		fmt.Println("Keyword weights:")
		for _, kw := range keywords {
			fmt.Printf("  %-24s %.2f\n", kw, weights[kw])
		}
		fmt.Println()
	}

	results := engine.Search(criteria, c.Int("limit"))
	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, res := range results {
		fmt.Printf("%2d. %s by %s\n", i+1, orUnknown(res.ProjectName), orUnknown(res.Developer))
		fmt.Printf("    %s, %s\n", orUnknown(res.Location), orUnknown(res.Region))
		if res.PricePerSqft != "" {
			fmt.Printf("    Price: %s per sqft\n", res.PricePerSqft)
		}
		if len(res.MatchedTerms) > 0 {
			fmt.Printf("    Score: %.1f (matches: %s)\n", res.Score, strings.Join(res.MatchedTerms, ", "))
		}
	}
	fmt.Printf("\n%d results\n", len(results))
	return nil
}

type fieldCount struct {
	value string
	n     int
}

func countField(records []model.PropertyRecord, get func(model.PropertyRecord) string) []fieldCount {
	counts := make(map[string]int)
	for _, rec := range records {
		if v := strings.TrimSpace(get(rec)); v != "" {
			counts[v]++
		}
	}

	out := make([]fieldCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, fieldCount{value: v, n: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].value < out[j].value
	})
	return out
}

func printCounts(counts []fieldCount, top int) {
	if len(counts) > top {
		counts = counts[:top]
	}
	for _, fc := range counts {
		fmt.Printf("  %-32s %d\n", fc.value, fc.n)
	}
}

func priceSpan(records []model.PropertyRecord) (lo, hi float64, priced int) {
	for _, rec := range records {
		price := search.ParsePrice(rec.PricePerSqft)
		if price <= 0 {
			continue
		}
		if priced == 0 || price < lo {
			lo = price
		}
		if price > hi {
			hi = price
		}
		priced++
	}
	return lo, hi, priced
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
