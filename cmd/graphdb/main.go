// Package main provides the graphdb CLI entry point.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strayaworks/graphdb/pkg/config"
	"github.com/strayaworks/graphdb/pkg/graph"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "graphdb",
		Short: "graphdb - embedded property-graph storage core",
		Long: `graphdb is a thin command-line frontend over an embedded
property-graph database: a BadgerDB-backed key-value engine, an LRU read
cache, an adaptive hybrid router, and a typed node/edge data model.`,
	}
	rootCmd.PersistentFlags().String("data-dir", "./data/graphdb", "Data directory")
	rootCmd.PersistentFlags().String("config", "", "Optional YAML config file overriding cache/hybrid defaults")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphdb v%s\n", version)
		},
	})

	addNodeCmd := &cobra.Command{
		Use:   "add-node <label>",
		Short: "Create a node with the given label",
		Args:  cobra.ExactArgs(1),
		RunE:  runAddNode,
	}
	addNodeCmd.Flags().StringArray("prop", nil, "Property as key=json-value, may be repeated")
	rootCmd.AddCommand(addNodeCmd)

	addEdgeCmd := &cobra.Command{
		Use:   "add-edge <label> <source-id> <target-id>",
		Short: "Create a directed edge between two existing nodes",
		Args:  cobra.ExactArgs(3),
		RunE:  runAddEdge,
	}
	rootCmd.AddCommand(addEdgeCmd)

	getNodeCmd := &cobra.Command{
		Use:   "get-node <id>",
		Short: "Print a node by id",
		Args:  cobra.ExactArgs(1),
		RunE:  runGetNode,
	}
	rootCmd.AddCommand(getNodeCmd)

	getEdgeCmd := &cobra.Command{
		Use:   "get-edge <id>",
		Short: "Print an edge by id",
		Args:  cobra.ExactArgs(1),
		RunE:  runGetEdge,
	}
	rootCmd.AddCommand(getEdgeCmd)

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Find nodes by label",
		RunE:  runQuery,
	}
	queryCmd.Flags().String("label", "", "Label to filter by")
	queryCmd.Flags().Int("limit", 0, "Maximum number of results (0 = unlimited)")
	queryCmd.Flags().Int("offset", 0, "Number of results to skip")
	rootCmd.AddCommand(queryCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print storage engine size diagnostics",
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openGraph(cmd *cobra.Command) (*graph.Graph, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.DefaultGraphConfig()
	if configPath != "" {
		loaded, err := config.LoadGraphConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return graph.Open(graph.Options{DataDir: dataDir, Config: cfg})
}

func runAddNode(cmd *cobra.Command, args []string) error {
	g, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	rawProps, _ := cmd.Flags().GetStringArray("prop")
	props, err := parseProperties(rawProps)
	if err != nil {
		return err
	}

	node, err := g.AddNode(args[0], props)
	if err != nil {
		return err
	}
	return printJSON(node)
}

func runAddEdge(cmd *cobra.Command, args []string) error {
	g, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	source, err := parseNodeID(args[1])
	if err != nil {
		return err
	}
	target, err := parseNodeID(args[2])
	if err != nil {
		return err
	}

	edge, err := g.AddEdge(args[0], source, target, nil)
	if err != nil {
		return err
	}
	return printJSON(edge)
}

func runGetNode(cmd *cobra.Command, args []string) error {
	g, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	id, err := parseNodeID(args[0])
	if err != nil {
		return err
	}
	node, err := g.GetNode(id)
	if err != nil {
		return err
	}
	return printJSON(node)
}

func runGetEdge(cmd *cobra.Command, args []string) error {
	g, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	id, err := parseEdgeID(args[0])
	if err != nil {
		return err
	}
	edge, err := g.GetEdge(id)
	if err != nil {
		return err
	}
	return printJSON(edge)
}

func runQuery(cmd *cobra.Command, args []string) error {
	g, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	label, _ := cmd.Flags().GetString("label")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	q := g.Query()
	if label != "" {
		q = q.WithLabel(label)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	result, err := q.Execute()
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runStats(cmd *cobra.Command, args []string) error {
	g, err := openGraph(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	return printJSON(g.Stats())
}
