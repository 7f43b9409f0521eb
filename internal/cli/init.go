package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const projectTemplate = `# Stagehand project declaration.
experience:
  configuration:
    genre: All
    playableDevices: [Computer, Phone, Tablet]
    isFriendsOnly: false
  # icon: assets/icon.png
  # thumbnails:
  #   - assets/thumbnail-1.png
  # products:
  #   gems:
  #     name: 100 Gems
  #     description: A pouch of gems.
  #     price: 50

places:
  start:
    file: places/start.rbxlx
    configuration:
      name: My Experience
      maxPlayerCount: 20
`

const gitignoreTemplate = `*.lock
*.tmp
history.db*
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new Stagehand project",
	Long:  `Writes a starter stagehand.yml and the state directory. Existing files are left alone.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	stateDir := filepath.Join(dir, settings.State.Dir)
	if filepath.IsAbs(settings.State.Dir) {
		stateDir = settings.State.Dir
	}

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", stateDir, err)
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, "stagehand.yml"), projectTemplate},
		{filepath.Join(stateDir, ".gitignore"), gitignoreTemplate},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			fmt.Fprintf(out, "Keeping existing %s\n", f.path)
			continue
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.path, err)
		}
		fmt.Fprintf(out, "Created %s\n", f.path)
	}

	fmt.Fprintln(out, "\nStagehand initialized successfully!")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Edit stagehand.yml to describe your experience")
	fmt.Fprintln(out, "  2. Run 'stagehand plan' to see what will be created")
	fmt.Fprintln(out, "  3. Run 'stagehand deploy' to create it")
	return nil
}
