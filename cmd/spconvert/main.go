// spconvert converts a duration given in days, hours and minutes into story
// points.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bubelovv/sprint-planner/internal/service"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "spconvert: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var days, hours, minutes float64

	flagSet := pflag.NewFlagSet("spconvert", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Float64VarP(&days, "days", "d", 0, "working days (1 day = 1 SP)")
	flagSet.Float64VarP(&hours, "hours", "H", 0, "hours (8 hours = 1 SP)")
	flagSet.Float64VarP(&minutes, "minutes", "m", 0, "minutes (480 minutes = 1 SP)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	sp, err := service.StoryPoints(days, hours, minutes)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%.2f\n", sp)
	return err
}
