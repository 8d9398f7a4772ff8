package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/reference"
	"github.com/san-kum/coingas/internal/sim"
)

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printSummary(r *sim.Result) {
	fmt.Printf("collisions: %d in %d steps (%v)\n", r.Collisions, r.Steps, r.Elapsed)
	fmt.Printf("stopped:    %s\n", r.StopReason)
	printMetrics(r.Metrics)
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("metrics:")
	for _, name := range names {
		fmt.Printf("  %-16s %.6g\n", name, m[name])
	}
}

// printOccupancy lines the measured occupancy up against the microstate count
// for cfg.
func printOccupancy(cfg *config.Config, occupancy []float64) error {
	table, err := reference.Boltzmann(cfg.Disks, cfg.TotalEnergy, cfg.Capacity)
	if err != nil {
		return err
	}
	c := reference.Compare(metrics.Snapshot{Occupancy: occupancy}, table)

	w := newTable()
	fmt.Fprintln(w, "LEVEL\tMEASURED\tBOLTZMANN\tABS_ERR")
	for _, l := range c.Levels {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\n", l.Level, l.Empirical, l.Expected, l.AbsError)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nhellinger %.4f, monotone %v\n", c.Hellinger, c.Monotone)
	return nil
}
