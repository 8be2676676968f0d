package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/neurosim/internal/brain"
	"github.com/san-kum/neurosim/internal/config"
	"github.com/san-kum/neurosim/internal/experiment"
	"github.com/san-kum/neurosim/internal/export"
	"github.com/san-kum/neurosim/internal/neural"
	"github.com/san-kum/neurosim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	inspectFormat string
	inspectSVG    string
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [brain]",
		Short: "show a brain's neurons, connections and wiring",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectBrain,
	}
	cmd.Flags().StringVar(&inspectFormat, "format", "table", "output format (table, yaml, xml)")
	cmd.Flags().StringVar(&inspectSVG, "svg", "", "write a topology diagram to an SVG file")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [body]",
		Short: "list built-in brains and run presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
}

func inspectBrain(cmd *cobra.Command, args []string) error {
	name := cfg.Brain
	if len(args) > 0 {
		name = args[0]
	}
	desc, err := brain.Resolve(name)
	if err != nil {
		return err
	}

	switch inspectFormat {
	case "yaml":
		out, err := desc.EncodeYAML()
		if err != nil {
			return err
		}
		os.Stdout.Write(out)
	case "xml":
		out, err := desc.EncodeXML()
		if err != nil {
			return err
		}
		os.Stdout.Write(out)
		fmt.Println()
	case "table":
		if err := printBrain(desc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", inspectFormat)
	}

	if inspectSVG != "" {
		svg := export.BrainSVG(desc, 600, 400)
		if err := os.WriteFile(inspectSVG, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", inspectSVG)
	}
	return nil
}

func printBrain(desc *brain.Description) error {
	net, err := brain.Build(desc)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(desc.Name))
	if desc.Body != "" {
		fmt.Printf("body: %s\n", desc.Body)
	}
	c := net.Capacity()
	fmt.Printf("capacity: %d inputs, %d non-inputs\n\n", c.Inputs, c.NonInputs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, viz.TableHeader.Render("POS")+"\t"+viz.TableHeader.Render("ID")+"\t"+
		viz.TableHeader.Render("LAYER")+"\t"+viz.TableHeader.Render("KIND")+"\t"+viz.TableHeader.Render("PARAMS"))
	for _, n := range net.Neurons() {
		params := "-"
		if n.Kind != neural.KindInput {
			params = fmt.Sprintf("%.3g, %.3g, %.3g", n.Params[0], n.Params[1], n.Params[2])
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", n.Position, n.ID, n.Layer, n.Kind, viz.TableMuted.Render(params))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(desc.Connections) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, viz.TableHeader.Render("SRC")+"\t"+viz.TableHeader.Render("DST")+"\t"+viz.TableHeader.Render("WEIGHT"))
		for _, conn := range desc.Connections {
			wt, err := net.Weight(conn.Src, conn.Dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%+.3f\n", conn.Src, conn.Dst, wt)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(desc.Sensors)+len(desc.Actuators) > 0 {
		fmt.Println()
		for _, s := range desc.Sensors {
			fmt.Printf("sensor   x%d -> %s (scale %g, offset %g)\n", *s.State, s.Input, or(s.Scale, 1), s.Offset)
		}
		for _, a := range desc.Actuators {
			fmt.Printf("actuator %s -> u%d (scale %g, offset %g)\n", a.Output, *a.Control, or(a.Scale, 1), a.Offset)
		}
	}
	return nil
}

func or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func listPresets(cmd *cobra.Command, args []string) error {
	bodies := experiment.NewRegistry().Bodies()
	if len(args) > 0 {
		bodies = []string{args[0]}
	}

	if len(args) == 0 {
		fmt.Println(viz.Title.Render("brains"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, name := range brain.ListPresets() {
			desc, err := brain.Preset(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %s\t%s\t%d neurons\n", name, desc.Body, len(desc.Neurons))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
	}

	fmt.Println(viz.Title.Render("run presets"))
	for _, b := range bodies {
		presets := config.ListPresets(b)
		if len(presets) == 0 {
			fmt.Printf("  no presets for body: %s\n", b)
			continue
		}
		fmt.Printf("  %s: %s\n", b, strings.Join(presets, ", "))
	}
	return nil
}
