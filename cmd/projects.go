package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tatami-vcs/tatami/internal/storage"
	"github.com/tatami-vcs/tatami/internal/ui/styles"
)

var projectsJSON bool

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List repositories tatami has opened",
	Long: `List the repositories tatami has opened, most recent first.

Examples:
  # List known projects
  tatami projects

  # Machine-readable output
  tatami projects --json | jq '.[].path'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("opening project store: %w", err)
		}
		defer store.Close()

		projects, err := store.Projects()
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}

		if projectsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(projects)
		}

		return renderProjects(os.Stdout, projects, time.Now())
	},
}

// renderProjects writes the project table, most recent first.
func renderProjects(out io.Writer, projects []storage.Project, now time.Time) error {
	if len(projects) == 0 {
		fmt.Fprintln(out, "no projects yet; run tatami inside a jj repository")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATH\tLAST OPENED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Path, styles.RelativeTime(time.Unix(p.LastOpenedAt, 0), now))
	}
	return w.Flush()
}

func init() {
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "print projects as JSON")
	rootCmd.AddCommand(projectsCmd)
}
