package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bkarpinos/shorty/internal/shortener"
)

// Add command
var addCmd = &cobra.Command{
	Use:     "add [url]",
	Short:   "Shorten a URL",
	Args:    cobra.ExactArgs(1),
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("shortcode")
		validity, _ := cmd.Flags().GetString("validity")

		l, err := shorty.Shortener.Shorten(shortener.Request{
			LongURL:   args[0],
			Shortcode: code,
			Validity:  validity,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created short link: %s -> %s\n", shorty.Shortener.ShortURL(l.Shortcode), l.LongURL)
		fmt.Printf("Expires at %s\n", l.ExpiresAt().Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

// List command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List short links with click analytics",
	Args:    cobra.NoArgs,
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := shorty.Registry.List()
		if err != nil {
			return err
		}
		if len(links) == 0 {
			fmt.Println("No links found.")
			return nil
		}

		now := time.Now()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SHORT URL\tDESTINATION\tCLICKS\tEXPIRES\tSTATUS")
		for _, l := range links {
			status := "active"
			if l.Expired(now) {
				status = "expired"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				shorty.Shortener.ShortURL(l.Shortcode),
				l.LongURL,
				l.Clicks,
				l.ExpiresAt().Local().Format("2006-01-02 15:04"),
				status,
			)
		}
		return w.Flush()
	},
}

// Open command
var openCmd = &cobra.Command{
	Use:     "open [shortcode]",
	Short:   "Resolve a short link, count the click and open it in the default browser",
	Args:    cobra.ExactArgs(1),
	PreRunE: requireSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := shorty.Resolver.Resolve(args[0])
		if err != nil {
			return err
		}

		if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
			fmt.Println(result.Destination)
			return nil
		}

		fmt.Printf("Opening %s (%s) in browser\n", args[0], result.Destination)
		return openBrowser(result.Destination)
	},
}

// openBrowser opens url in the default browser
func openBrowser(url string) error {
	var openCmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		openCmd = exec.Command("open", url)
	case "linux":
		openCmd = exec.Command("xdg-open", url)
	case "windows":
		openCmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := openCmd.Run(); err != nil {
		return fmt.Errorf("opening URL: %w", err)
	}
	return nil
}

func init() {
	addCmd.Flags().StringP("shortcode", "s", "", "Custom shortcode (letters, digits, '-' and '_')")
	addCmd.Flags().StringP("validity", "v", "", "Validity in minutes (default 30)")

	openCmd.Flags().BoolP("print", "p", false, "Print the destination instead of opening it")
}
