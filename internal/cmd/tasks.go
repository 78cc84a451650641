package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/tui"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "View and manage task instances",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List task groups with progress",
	RunE:  runTasksList,
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete <instance-id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksComplete,
}

var tasksSnoozeCmd = &cobra.Command{
	Use:   "snooze <instance-id>",
	Short: "Hide a task for a while (2, 24, or 168 hours)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksSnooze,
}

var tasksDismissCmd = &cobra.Command{
	Use:   "dismiss <instance-id>",
	Short: "Remove a task from view permanently",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDismiss,
}

var tasksBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and manage tasks interactively",
	RunE:  runTasksBrowse,
}

var (
	tasksUser        string
	tasksSnoozeHours int
	tasksTaskVersion int64
	tasksShowSnoozed bool
	tasksYes         bool
)

func init() {
	tasksListCmd.Flags().StringVar(&tasksUser, "user", "", "list groups for this user (default: registry file user)")
	tasksListCmd.Flags().BoolVar(&tasksShowSnoozed, "snoozed", false, "include snoozed tasks in the listing")

	tasksSnoozeCmd.Flags().IntVar(&tasksSnoozeHours, "hours", 24, "snooze duration in hours (2, 24, or 168)")

	for _, c := range []*cobra.Command{tasksCompleteCmd, tasksSnoozeCmd, tasksDismissCmd} {
		c.Flags().Int64Var(&tasksTaskVersion, "version", 0, "version last observed (for conflict detection)")
	}

	tasksDismissCmd.Flags().BoolVarP(&tasksYes, "yes", "y", false, "skip the confirmation prompt")

	tasksBrowseCmd.Flags().StringVar(&tasksUser, "user", "", "browse tasks of this user (default: registry file user)")

	tasksCmd.AddCommand(tasksListCmd, tasksCompleteCmd, tasksSnoozeCmd, tasksDismissCmd, tasksBrowseCmd)
	rootCmd.AddCommand(tasksCmd)
}

func resolveUser(cmd *cobra.Command, d *deps) (string, error) {
	if tasksUser != "" {
		return tasksUser, nil
	}
	user, err := d.Identity.CurrentUser(cmd.Context())
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func runTasksList(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	userID, err := resolveUser(cmd, d)
	if err != nil {
		return err
	}

	groups, err := d.Grouping.ListGroups(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No task groups. Apply a template first: releasehub apply <template> --release <id>")
		return nil
	}

	now := time.Now().UTC()
	for _, group := range groups {
		header := fmt.Sprintf("%s (%s) — %d/%d done", group.AnchorLabel, group.AnchorType, group.Progress.Completed, group.Progress.Total)
		if group.CycleKey != "" {
			header += fmt.Sprintf(" [%s]", group.CycleKey)
		}
		fmt.Println(header)

		for _, inst := range group.Tasks {
			if inst.Status == domain.StatusSnoozed && !tasksShowSnoozed {
				continue
			}

			marker := "[ ]"
			switch inst.Status {
			case domain.StatusCompleted:
				marker = "[x]"
			case domain.StatusSnoozed:
				marker = "[z]"
			}

			line := fmt.Sprintf("  %s %s", marker, inst.Title)
			if inst.DueDate != nil {
				line += "  " + inst.DueDate.Format("2006-01-02")
				if inst.Overdue(now) && inst.Status == domain.StatusPending {
					line += " (overdue)"
				}
			}
			fmt.Println(line)
			fmt.Printf("      id: %s  v%d\n", inst.InstanceID, inst.Version)
		}
		fmt.Println()
	}
	return nil
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	inst, err := d.Lifecycle.Complete(cmd.Context(), domain.InstanceID(args[0]), tasksTaskVersion)
	if err != nil {
		return err
	}
	fmt.Printf("Completed %q (v%d)\n", inst.Title, inst.Version)
	return nil
}

func runTasksSnooze(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	inst, err := d.Lifecycle.Snooze(cmd.Context(), domain.InstanceID(args[0]), tasksSnoozeHours, tasksTaskVersion)
	if err != nil {
		return err
	}
	fmt.Printf("Snoozed %q until %s (v%d)\n", inst.Title, inst.SnoozedUntil.Format(time.RFC3339), inst.Version)
	return nil
}

func runTasksDismiss(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	// Dismissal is terminal, so ask before doing it in a terminal session.
	if !tasksYes && tui.IsInteractive() {
		confirmed, err := tui.PromptForConfirmation("Dismiss this task permanently?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	inst, err := d.Lifecycle.Dismiss(cmd.Context(), domain.InstanceID(args[0]), tasksTaskVersion)
	if err != nil {
		return err
	}
	fmt.Printf("Dismissed %q\n", inst.Title)
	return nil
}

func runTasksBrowse(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	userID, err := resolveUser(cmd, d)
	if err != nil {
		return err
	}
	return tui.RunBrowser(cmd.Context(), d.Grouping, d.Lifecycle, userID)
}
