package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Work with the template catalog",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE:  runTemplatesList,
}

var templatesListJSON bool

var (
	tplNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	tplIDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99"))

	tplMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func init() {
	templatesListCmd.Flags().BoolVar(&templatesListJSON, "json", false, "output as JSON")

	templatesCmd.AddCommand(templatesListCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	templates := d.Catalog.List()

	if templatesListJSON {
		data, err := json.MarshalIndent(templates, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal templates: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, tpl := range templates {
		fmt.Printf("%s %s\n", tplNameStyle.Render(tpl.Name), tplIDStyle.Render("("+tpl.ID+")"))

		meta := fmt.Sprintf("  type: %s | phases: %d | tasks: %d", tpl.Type, len(tpl.Phases), tpl.TaskCount())
		if tpl.DurationWeeks != nil {
			meta += fmt.Sprintf(" | duration: %d weeks", *tpl.DurationWeeks)
		}
		fmt.Println(tplMetaStyle.Render(meta))

		if tpl.Description != "" {
			fmt.Println(tplMetaStyle.Render("  " + tpl.Description))
		}
		fmt.Println()
	}
	return nil
}
