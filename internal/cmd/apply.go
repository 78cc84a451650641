package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/engine"
	"github.com/Caspar241/releasehub/internal/tui"
)

var applyCmd = &cobra.Command{
	Use:   "apply <template-id>",
	Short: "Apply a template to a release or routine",
	Long: `Apply a template against an anchor, creating one task instance per
template task.

For release templates the anchor is a release from the registry file;
its release date plus each task's day offset yields the due dates. For
artist templates the anchor is a routine and the tasks land in the
current ISO week's batch.

Re-applying is safe: instances that already exist are reported as
skipped, never duplicated.

Run without arguments in a terminal to pick the template and anchor
interactively.

Examples:
  releasehub apply single-8w --release rel-1
  releasehub apply artist-weekly --routine rout-1
  releasehub apply`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

var (
	applyRelease string
	applyRoutine string
	applyDate    string
)

func init() {
	applyCmd.Flags().StringVar(&applyRelease, "release", "", "release ID to apply against")
	applyCmd.Flags().StringVar(&applyRoutine, "routine", "", "routine ID to apply against")
	applyCmd.Flags().StringVar(&applyDate, "date", "", "override the anchor date (YYYY-MM-DD)")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	if applyRelease != "" && applyRoutine != "" {
		return fmt.Errorf("only one of --release or --routine may be set")
	}

	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()

	var templateID string
	if len(args) == 1 {
		templateID = args[0]
	} else {
		if !tui.IsInteractive() {
			return fmt.Errorf("template ID required when not running in a terminal")
		}
		templateID, err = promptForTemplate(d)
		if err != nil {
			return err
		}
	}

	if applyRelease == "" && applyRoutine == "" {
		if !tui.IsInteractive() {
			return fmt.Errorf("one of --release or --routine is required when not running in a terminal")
		}
		if err := promptForAnchor(cmd, d, templateID); err != nil {
			return err
		}
	}

	var anchor engine.Anchor
	var cycleKey domain.CycleKey

	if applyRelease != "" {
		release, err := d.Releases.Release(ctx, applyRelease)
		if err != nil {
			return err
		}
		anchor = engine.Anchor{ID: release.ID, Date: release.ReleaseDate}
		if applyDate != "" {
			date, err := time.ParseInLocation("2006-01-02", applyDate, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid --date %q (want YYYY-MM-DD): %w", applyDate, err)
			}
			anchor.Date = &date
		}
	} else {
		routine, err := d.Routines.Routine(ctx, applyRoutine)
		if err != nil {
			return err
		}
		anchor = engine.Anchor{ID: routine.ID}
		cycleKey = domain.CycleKeyFor(time.Now().UTC())
	}

	result, err := d.Engine.Apply(ctx, templateID, anchor, cycleKey)
	if err != nil {
		return err
	}

	fmt.Printf("Applied %s to %s: %d created, %d skipped\n",
		templateID, anchor.ID, len(result.Created), len(result.Skipped))
	for _, inst := range result.Created {
		due := "no due date"
		if inst.DueDate != nil {
			due = inst.DueDate.Format("2006-01-02")
		}
		fmt.Printf("  + %-45s %s\n", inst.Title, due)
	}
	return nil
}

func promptForTemplate(d *deps) (string, error) {
	templates := d.Catalog.List()
	options := make([]tui.SelectOption, 0, len(templates))
	for _, tpl := range templates {
		options = append(options, tui.SelectOption{
			Label: fmt.Sprintf("%s (%s, %d tasks)", tpl.Name, tpl.Type, tpl.TaskCount()),
			Value: tpl.ID,
		})
	}
	return tui.PromptForSelect("Which template?", options)
}

// promptForAnchor fills applyRelease or applyRoutine from an interactive
// pick, scoped to the current user's registry entries.
func promptForAnchor(cmd *cobra.Command, d *deps, templateID string) error {
	ctx := cmd.Context()

	tpl, err := d.Catalog.Template(templateID)
	if err != nil {
		return err
	}
	user, err := d.Identity.CurrentUser(ctx)
	if err != nil {
		return err
	}

	if tpl.IsRecurring() {
		routines, err := d.Routines.RoutinesForUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(routines) == 0 {
			return fmt.Errorf("no routines registered; add one to the registry file first")
		}
		options := make([]tui.SelectOption, 0, len(routines))
		for _, r := range routines {
			options = append(options, tui.SelectOption{Label: r.ArtistName, Value: r.ID})
		}
		applyRoutine, err = tui.PromptForSelect("Which artist routine?", options)
		return err
	}

	releases, err := d.Releases.ReleasesForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(releases) == 0 {
		return fmt.Errorf("no releases registered; add one to the registry file first")
	}
	options := make([]tui.SelectOption, 0, len(releases))
	for _, rel := range releases {
		label := rel.Title
		if rel.ReleaseDate != nil {
			label += " (" + rel.ReleaseDate.Format("2006-01-02") + ")"
		}
		options = append(options, tui.SelectOption{Label: label, Value: rel.ID})
	}
	applyRelease, err = tui.PromptForSelect("Which release?", options)
	return err
}
