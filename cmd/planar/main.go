// Package main provides the planar CLI.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"planar/internal/config"
	"planar/internal/expr"
	"planar/internal/shell"
	"planar/internal/snapshot"
)

var rootCmd = &cobra.Command{
	Use:   "planar",
	Short: "Planar - interactive 2D geometric construction and constraint solving",
	Long:  `Planar is a local CLI for 2D geometric constructions: points, segments, circles and arcs with named variables, expression-valued constraints, and a least-squares constraint solver. Scenes persist to a local SQLite database.`,
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive construction shell",
	RunE:  runShell,
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression with no variables bound",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEval,
}

var sceneCmd = &cobra.Command{
	Use:   "scene",
	Short: "Scene store commands",
}

var sceneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved scenes",
	RunE:  runSceneList,
}

var sceneShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a saved scene's contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSceneShow,
}

var sceneRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved scene",
	Args:  cobra.ExactArgs(1),
	RunE:  runSceneRm,
}

var dataDir string

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "",
		"Scene database directory (default $PLANAR_DATA or ./data)")

	sceneCmd.AddCommand(sceneListCmd)
	sceneCmd.AddCommand(sceneShowCmd)
	sceneCmd.AddCommand(sceneRmCmd)

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(sceneCmd)
}

func main() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg := config.FromEnv()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg
}

func openStore(cfg *config.Config) (*snapshot.Store, error) {
	store, err := snapshot.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening scene store: %w", err)
	}
	return store, nil
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	opts, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return err
	}
	if cfg.Debug {
		log.Printf("solver tuning: %+v", opts)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sh := shell.New(store, opts, os.Stdout)
	return sh.Run(cfg.HistoryFile)
}

func runEval(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	val, ok := expr.Evaluate(input, nil)
	if !ok {
		return fmt.Errorf("expression %q is unresolved or invalid", input)
	}
	fmt.Printf("%.10g\n", val)
	return nil
}

func runSceneList(cmd *cobra.Command, args []string) error {
	store, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	metas, err := store.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No scenes saved.")
		return nil
	}
	for _, m := range metas {
		fmt.Printf("%s  %-20s  %s  %s\n",
			m.ID, m.Name, shortID(m.Digest), m.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runSceneShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Load(args[0])
	if err != nil {
		st, err = store.LoadLatestByName(args[0])
	}
	if err != nil {
		return err
	}

	for _, id := range st.PointIDs() {
		p := st.Points[id]
		fmt.Printf("point %d %s (%.4g, %.4g)\n", p.ID, p.Label, p.X, p.Y)
	}
	for _, id := range st.SegmentIDs() {
		seg := st.Segments[id]
		fmt.Printf("segment %d %s %d-%d\n", seg.ID, seg.Type, seg.P1, seg.P2)
	}
	for _, id := range st.CircleIDs() {
		c := st.Circles[id]
		fmt.Printf("circle %d %s center %d radius %.4g\n", c.ID, c.Type, c.Center, c.Radius)
	}
	for _, id := range st.ArcIDs() {
		a := st.Arcs[id]
		fmt.Printf("arc %d circle %d %d-%d\n", a.ID, a.Circle, a.Start, a.End)
	}
	for _, name := range st.VariableNames() {
		v := st.Variables[name]
		if v.HasValue {
			fmt.Printf("var %s = %.6g\n", name, v.Value)
		} else {
			fmt.Printf("var %s = <unresolved>\n", name)
		}
	}
	for _, c := range st.Constraints {
		fmt.Printf("constraint %d %s points=%v target=%d %s\n",
			c.ID, c.Type, c.Points, c.Target, c.Expr)
	}
	return nil
}

func runSceneRm(cmd *cobra.Command, args []string) error {
	store, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Delete(args[0])
}

// shortID safely truncates a digest string to 12 characters.
func shortID(s string) string {
	if len(s) >= 12 {
		return s[:12]
	}
	return s
}
