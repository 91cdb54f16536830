package main

import (
	"context"
	"fmt"
	"os"

	"chromactl/internal/chroma"
	"chromactl/internal/output"

	"github.com/spf13/cobra"
)

// listCmd lists all collections with their record counts
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}
}

// createCmd creates a new collection
func createCmd() *cobra.Command {
	var (
		distance          string
		embeddingProvider string
		embeddingModel    string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new collection",
		Long: `Create a new collection with the given distance metric and embedding hints.

Examples:
  chromactl create notes                       # l2 metric (server default)
  chromactl create notes --distance cosine     # cosine similarity
  chromactl create notes --embedding-model text-embedding-3-small`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), args[0], distance, embeddingProvider, embeddingModel)
		},
	}

	cmd.Flags().StringVar(&distance, "distance", chroma.DefaultSpace, "distance metric (cosine, l2, ip)")
	cmd.Flags().StringVar(&embeddingProvider, "embedding-provider", "openai", "embedding model provider")
	cmd.Flags().StringVar(&embeddingModel, "embedding-model", "", "specific embedding model to use")

	return cmd
}

// peekCmd shows a sample of a collection's records
func peekCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "peek NAME",
		Short: "Peek into a collection's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeek(cmd.Context(), args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of records to show")

	return cmd
}

// searchCmd runs a semantic similarity search
func searchCmd() *cobra.Command {
	var nResults int

	cmd := &cobra.Command{
		Use:   "search NAME QUERY",
		Short: "Search a collection with a text query",
		Long: `Submit a free-text query to the collection. The server embeds the text and
returns the nearest records ordered by ascending distance.

Examples:
  chromactl search notes "deployment checklist"
  chromactl search notes "error budget" --n-results 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args[0], args[1], nResults)
		},
	}

	cmd.Flags().IntVar(&nResults, "n-results", 5, "number of results to return")

	return cmd
}

// statsCmd shows collection statistics
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats NAME",
		Short: "Show collection statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), args[0])
		},
	}
}

// deleteCmd deletes a collection
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), args[0])
		},
	}
}

// validatePositive rejects non-positive flag values before any network call.
func validatePositive(flag string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%w: --%s must be positive, got %d", chroma.ErrInvalidArgument, flag, v)
	}
	return nil
}

func runList(ctx context.Context) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	cols, err := client.ListCollections(ctx)
	if err != nil {
		return err
	}

	r := output.NewRenderer(os.Stdout)
	if len(cols) == 0 {
		r.Notice("no collections found")
		return nil
	}

	rows := make([]output.CollectionRow, 0, len(cols))
	for i := range cols {
		count, err := client.Count(ctx, &cols[i])
		if err != nil {
			return err
		}
		rows = append(rows, output.CollectionRow{Name: cols[i].Name, Count: count})
	}
	r.CollectionTable(rows)
	return nil
}

func runCreate(ctx context.Context, name, distance, embeddingProvider, embeddingModel string) error {
	if !chroma.ValidSpace(distance) {
		return fmt.Errorf("%w: unknown distance metric %q (use cosine, l2, or ip)", chroma.ErrInvalidArgument, distance)
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	metadata := map[string]any{
		chroma.SpaceMetadataKey:    distance,
		chroma.ProviderMetadataKey: embeddingProvider,
	}
	if embeddingModel != "" {
		metadata[chroma.ModelMetadataKey] = embeddingModel
	}

	col, err := client.CreateCollection(ctx, name, metadata)
	if err != nil {
		return err
	}

	r := output.NewRenderer(os.Stdout)
	r.Success(fmt.Sprintf("Created collection %q", col.Name))
	r.Detail("Distance metric", distance)
	r.Detail("Embedding provider", embeddingProvider)
	if embeddingModel != "" {
		r.Detail("Embedding model", embeddingModel)
	}
	return nil
}

func runPeek(ctx context.Context, name string, limit int) error {
	if err := validatePositive("limit", limit); err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	col, err := client.GetCollection(ctx, name)
	if err != nil {
		return err
	}

	res, err := client.GetRecords(ctx, col, limit, false)
	if err != nil {
		return err
	}

	r := output.NewRenderer(os.Stdout)
	if len(res.IDs) == 0 {
		r.Notice("collection is empty")
		return nil
	}

	total, err := client.Count(ctx, col)
	if err != nil {
		return err
	}

	records := make([]output.Record, len(res.IDs))
	for i, id := range res.IDs {
		records[i] = output.Record{ID: id}
		if i < len(res.Documents) {
			records[i].Document = res.Documents[i]
		}
		if i < len(res.Metadatas) {
			records[i].Metadata = res.Metadatas[i]
		}
	}
	r.PeekTable(records, total)
	return nil
}

func runSearch(ctx context.Context, name, query string, nResults int) error {
	if err := validatePositive("n-results", nResults); err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	col, err := client.GetCollection(ctx, name)
	if err != nil {
		return err
	}

	res, err := client.Query(ctx, col, query, nResults)
	if err != nil {
		return err
	}

	r := output.NewRenderer(os.Stdout)
	if len(res.IDs) == 0 || len(res.IDs[0]) == 0 {
		r.Notice("no results found")
		return nil
	}

	// One query text in, so exactly one result group out.
	hits := make([]output.Hit, len(res.IDs[0]))
	for i, id := range res.IDs[0] {
		hits[i] = output.Hit{ID: id}
		if len(res.Distances) > 0 && i < len(res.Distances[0]) {
			hits[i].Distance = res.Distances[0][i]
		}
		if len(res.Documents) > 0 && i < len(res.Documents[0]) {
			hits[i].Document = res.Documents[0][i]
		}
	}
	r.SearchTable(hits)
	return nil
}

func runStats(ctx context.Context, name string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	col, err := client.GetCollection(ctx, name)
	if err != nil {
		return err
	}

	count, err := client.Count(ctx, col)
	if err != nil {
		return err
	}

	// Dimensions come from one stored vector; an empty collection has none.
	dimensions := "unknown (empty collection)"
	if count > 0 {
		sample, err := client.GetRecords(ctx, col, 1, true)
		if err != nil {
			return err
		}
		if len(sample.Embeddings) > 0 {
			dimensions = fmt.Sprintf("%d", len(sample.Embeddings[0]))
		}
	}

	r := output.NewRenderer(os.Stdout)
	r.StatsPanel(col.Name, count, dimensions, col.Space())
	return nil
}

func runDelete(ctx context.Context, name string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	if err := client.DeleteCollection(ctx, name); err != nil {
		return err
	}

	r := output.NewRenderer(os.Stdout)
	r.Success(fmt.Sprintf("Deleted collection %q", name))
	return nil
}
