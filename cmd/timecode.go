package cmd

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anisan-cli/spacetime/color"
	"github.com/anisan-cli/spacetime/key"
	"github.com/anisan-cli/spacetime/style"
	"github.com/anisan-cli/spacetime/timecode"
)

func init() {
	rootCmd.AddCommand(timecodeCmd)
	timecodeCmd.Flags().BoolP("seconds", "s", false, "Print only the value in seconds")
	timecodeCmd.SetOut(os.Stdout)
}

var timecodeCmd = &cobra.Command{
	Use:     "timecode [value...]",
	Aliases: []string{"tc"},
	Short:   "Convert time codes to seconds and back",
	Example: `  spacetime timecode 01:02:03.5 90
  spacetime timecode --fps 25 00:00:10;12`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			fps     = viper.GetFloat64(key.TimecodeFrameRate)
			seconds = lo.Must(cmd.Flags().GetBool("seconds"))
			width   = lo.Max(lo.Map(args, func(a string, _ int) int { return len(a) }))
			failed  bool
		)

		for _, arg := range args {
			v := timecode.Value(parseNumber(arg), fps)
			if math.IsNaN(v) {
				failed = true
				cmd.Printf("%s %s\n", style.Width(width)(arg), style.Fg(color.Red)("invalid"))
				continue
			}

			if seconds {
				cmd.Println(strconv.FormatFloat(v, 'f', -1, 64))
				continue
			}
			cmd.Printf("%s %s %s\n",
				style.Width(width)(arg),
				style.Fg(color.Yellow)(fmt.Sprintf("%gs", v)),
				style.Faint(timecode.Format(v, fps)),
			)
		}

		if failed {
			os.Exit(1)
		}
	},
}

// parseNumber passes plain numbers through as numbers, so 1e3 is read too.
func parseNumber(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
