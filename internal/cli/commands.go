package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"listbuilder/internal/listbuilder"
	"listbuilder/internal/log"
)

func (a *app) importCommand() *cobra.Command {
	var vlbPath string
	cmd := &cobra.Command{
		Use:   "import [list|-]",
		Short: "Convert a fleet list into save notation (.vlb)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := a.readList(args)
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			res, err := svc.Import(cmd.Context(), text, vlbPath)
			if err != nil {
				return err
			}
			a.printResult(res)
			return nil
		},
	}
	cmd.Flags().StringVar(&vlbPath, "vlb", "", "output file (default: a unique name in the output directory)")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var vlogPath string
	cmd := &cobra.Command{
		Use:   "export <file.vlb>",
		Short: "Encode save notation into a VASSAL log (.vlog)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			out, err := svc.Export(cmd.Context(), args[0], vlogPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.streams.Out, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&vlogPath, "vlog", "", "output file (default: a unique name in the output directory)")
	return cmd
}

func (a *app) convertCommand() *cobra.Command {
	var vlogPath string
	cmd := &cobra.Command{
		Use:   "convert [list|-]",
		Short: "Convert a fleet list straight into a VASSAL log (.vlog)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := a.readList(args)
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			res, err := svc.Convert(cmd.Context(), text, vlogPath)
			if err != nil {
				return err
			}
			a.printResult(res)
			return nil
		},
	}
	cmd.Flags().StringVar(&vlogPath, "vlog", "", "output file (default: a unique name in the output directory)")
	return cmd
}

func (a *app) decodeCommand() *cobra.Command {
	var vlbPath string
	cmd := &cobra.Command{
		Use:   "decode <file.vlog>",
		Short: "Decode a VASSAL log back into readable save notation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			out, err := svc.Decode(cmd.Context(), args[0], vlbPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.streams.Out, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&vlbPath, "vlb", "", "output file (default: a unique name in the output directory)")
	return cmd
}

func (a *app) identifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "identify [list|-]",
		Short: "Report which list builder produced a list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := a.readList(args)
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			d, scores := svc.Identify(text)
			fmt.Fprintf(a.streams.Out, "%s\t%s\n", d, d.Title())
			fmt.Fprintf(a.streams.Out, "scores\t%s\n", scores)
			if scores.Ambiguous() {
				fmt.Fprintln(a.streams.Out, "no format matched, the default was chosen")
			}
			return nil
		},
	}
}

func (a *app) batchCommand() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch <list-file>...",
		Short: "Convert many list files into VASSAL logs concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs := make([]listbuilder.Job, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read list %s: %w", path, err)
				}
				jobs = append(jobs, listbuilder.Job{Name: path, Text: string(data)})
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			results, err := svc.ConvertAll(cmd.Context(), jobs, workers)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(a.streams.Out, "%s\tFAILED\t%v\n", r.Job.Name, r.Err)
					continue
				}
				fmt.Fprintf(a.streams.Out, "%s\t%s\t%s\n", r.Job.Name, r.Result.Dialect, r.Result.Output)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d lists failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent conversions (default: batch.workers from the configuration)")
	return cmd
}

func (a *app) configCommand() *cobra.Command {
	var writePath string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, or write it to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if writePath != "" {
				if err := a.cfg.Save(writePath); err != nil {
					return err
				}
				log.Info("wrote configuration", "path", writePath)
				fmt.Fprintln(a.streams.Out, writePath)
				return nil
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = a.streams.Out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&writePath, "write", "", "write the effective configuration to this file")
	return cmd
}
