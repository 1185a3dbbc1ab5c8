package clidoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const cobraSrc = `package main

import (
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "refdocs",
	Short: "Generate reference documentation",
	Long:  "Generate a browsable reference site for a Go module.\n",
}

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build the site",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
}

var (
	outputDir string
	verbosity int
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check outbound links",
	}
	cmd.Flags().IntP("workers", "w", 8, "Concurrent requests")
	return cmd
}

func init() {
	buildCmd.Flags().StringVar(&outputDir, "output", "site", "Output directory")
	buildCmd.Flags().Bool("no-refresh", false, "Skip refreshing unchanged pages")
	buildCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity")
	serveCmd.Flags().Duration("poll", 2*time.Second, "Poll interval")
	rootCmd.AddCommand(buildCmd, serveCmd)
	rootCmd.AddCommand(newCheckCmd())
}

func main() { _ = rootCmd.Execute() }
`

func loadCobra(t *testing.T) *Tree {
	t.Helper()
	tree, err := Load(LoadOptions{Dir: writeMain(t, cobraSrc)})
	require.NoError(t, err)
	require.Equal(t, "cobra", tree.Framework)
	return tree
}

func TestCobraRoot(t *testing.T) {
	root := loadCobra(t).Root

	require.Equal(t, "refdocs", root.Name)
	require.Equal(t, "Generate reference documentation", root.Synopsis)
	require.Equal(t, "Generate a browsable reference site for a Go module.", root.Description)

	var names []string
	for _, child := range root.Children {
		names = append(names, child.Name)
	}
	require.Equal(t, []string{"build", "serve", "check"}, names)
}

func TestCobraFlags(t *testing.T) {
	root := loadCobra(t).Root
	build, serve, check := root.Children[0], root.Children[1], root.Children[2]

	require.Len(t, build.Flags, 3)
	require.Equal(t, Flag{Name: "output", Type: "string", Default: "site", Help: "Output directory"}, build.Flags[0])
	require.Equal(t, Flag{Name: "no-refresh", Type: "bool", Default: "false", Help: "Skip refreshing unchanged pages"}, build.Flags[1])
	require.Equal(t, Flag{Name: "verbose", Short: "v", Type: "int", Help: "Increase verbosity"}, build.Flags[2])

	require.Len(t, serve.Flags, 1)
	require.Equal(t, "time.Duration", serve.Flags[0].Type)
	require.Equal(t, "2*time.Second", serve.Flags[0].Default)

	require.Len(t, check.Flags, 1)
	require.Equal(t, Flag{Name: "workers", Short: "w", Type: "int", Default: "8", Help: "Concurrent requests"}, check.Flags[0])
}

func TestCobraInitAssignment(t *testing.T) {
	dir := writeMain(t, `package main

import "github.com/spf13/cobra"

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{Use: "toolbox", Short: "Assorted helpers"}
}

func main() { _ = rootCmd.Execute() }
`)

	tree, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	require.Equal(t, "cobra", tree.Framework)
	require.Equal(t, "toolbox", tree.Root.Name)
	require.Equal(t, "Assorted helpers", tree.Root.Synopsis)
}

func TestCobraUseWithoutName(t *testing.T) {
	dir := writeMain(t, `package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{Short: "Unnamed tool"}

func main() { _ = rootCmd.Execute() }
`)

	tree, err := Load(LoadOptions{Dir: dir, BinaryName: "fallback"})
	require.NoError(t, err)
	require.Equal(t, "fallback", tree.Root.Name)
}
