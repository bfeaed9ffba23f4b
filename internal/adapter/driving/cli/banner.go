package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/catalogaudit/storybook-a11y-go/pkg/version"
)

// displayWelcomeBanner shows the welcome banner with version information.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$$$$$    /$$  /$$                                            /$$ /$$   /$$
        |____  $$ /$$$$|$$$$                                           | $$|__/  | $$
         /$$$$$$$|_  $$|_  $$ /$$   /$$        /$$$$$$  /$$   /$$  /$$$$$$$ /$$ /$$$$$$
        /$$__  $$  | $$  | $$| $$  | $$       |____  $$| $$  | $$ /$$__  $$| $$|_  $$_/
       | $$  | $$  | $$  | $$| $$  | $$        /$$$$$$$| $$  | $$| $$  | $$| $$  | $$
       | $$  | $$  | $$  | $$| $$  | $$       /$$__  $$| $$  | $$| $$  | $$| $$  | $$ /$$
       |  $$$$$$$ /$$$$$$$$$$| $$$$$$$       |  $$$$$$$|  $$$$$$/|  $$$$$$$| $$  |  $$$$/
        \_______/|__________/ \____  $$       \_______/ \______/  \_______/|__/   \___/
                              /$$  | $$
                             |  $$$$$$/
                              \______/
        `
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(cyan(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("Catalog Accessibility Audit CLI (v%s)", formattedVersion)))
}
