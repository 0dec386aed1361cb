package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bupt-se/hotel-ac-frontdesk/internal/app"
	"github.com/bupt-se/hotel-ac-frontdesk/internal/config"
	"github.com/bupt-se/hotel-ac-frontdesk/internal/domain"
	"github.com/bupt-se/hotel-ac-frontdesk/internal/logger"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/frontdesk"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/httpclient"
	"github.com/spf13/cobra"
)

// runtime holds what PersistentPreRunE builds once per invocation.
type runtime struct {
	desk *app.Desk
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "frontdesk",
		Short:         "Front-desk client for the hotel air-conditioning backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
	}

	root.AddCommand(
		newACCmd(rt, "power-on", "Request AC service for a room", (*app.Desk).PowerOn),
		newACCmd(rt, "change-state", "Change target temperature or fan speed", (*app.Desk).ChangeState),
		newCheckInCmd(rt),
		newCheckOutCmd(rt),
		newExportCmd(rt, "export-bill", "Export the latest bill of a room", exportBill),
		newExportCmd(rt, "export-detail", "Export the service detail of a room", exportDetail),
		newHistoryCmd(rt),
	)
	return root
}

func (rt *runtime) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logger.InfoObj("frontdesk starting", "config", map[string]any{
		"app_name":       cfg.AppName,
		"app_env":        cfg.Env,
		"api_base_url":   cfg.APIBaseURL,
		"api_timeout_ms": cfg.APITimeoutMS,
		"command":        cmd.Name(),
	})

	// The only client in the process; every consumer receives this instance.
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout}, log)
	if err != nil {
		return fmt.Errorf("init http client: %w", err)
	}

	desk, err := app.NewDesk(cmd.Context(), cfg, log, client)
	if err != nil {
		logger.ErrorObj("failed to initialize desk", "error", err)
		return err
	}
	rt.desk = desk
	return nil
}

// close runs after the command, including failed ones. Sync errors on
// terminals are not actionable and are dropped.
func (rt *runtime) close() {
	if rt.desk != nil {
		_ = rt.desk.Close()
		rt.desk = nil
	}
	_ = logger.Close()
}

type acFunc func(*app.Desk, context.Context, frontdesk.ACRequest) (bool, error)

func newACCmd(rt *runtime, use, short string, call acFunc) *cobra.Command {
	var (
		temp float64
		fan  string
	)
	cmd := &cobra.Command{
		Use:   use + " ROOM",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accepted, err := call(rt.desk, cmd.Context(), frontdesk.ACRequest{
				RoomID:     args[0],
				TargetTemp: temp,
				FanSpeed:   domain.FanSpeed(fan),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"room_id": args[0], "accepted": accepted})
		},
	}
	cmd.Flags().Float64Var(&temp, "temp", 25, "target temperature")
	cmd.Flags().StringVar(&fan, "fan", string(domain.FanMedium), "fan speed: LOW, MEDIUM or HIGH")
	return cmd
}

func newCheckInCmd(rt *runtime) *cobra.Command {
	var customerID, idNumber string
	cmd := &cobra.Command{
		Use:   "check-in ROOM",
		Short: "Check a customer into a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := rt.desk.CheckIn(cmd.Context(), frontdesk.CheckInRequest{
				RoomID:     args[0],
				CustomerID: customerID,
				IDNumber:   idNumber,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"room_id": args[0], "checked_in": true})
		},
	}
	cmd.Flags().StringVar(&customerID, "customer", "", "customer id")
	cmd.Flags().StringVar(&idNumber, "id-number", "", "identity document number")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func newCheckOutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "check-out ROOM",
		Short: "Check out a room and print its invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := rt.desk.CheckOut(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), inv)
		},
	}
}

type exportFunc func(cmd *cobra.Command, desk *app.Desk, room string, raw bool) ([]byte, error)

func newExportCmd(rt *runtime, use, short string, export exportFunc) *cobra.Command {
	var (
		out string
		raw bool
	)
	cmd := &cobra.Command{
		Use:   use + " ROOM",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := export(cmd, rt.desk, args[0], raw || out != "")
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the CSV export to this file")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the CSV export instead of JSON")
	return cmd
}

func exportBill(cmd *cobra.Command, desk *app.Desk, room string, raw bool) ([]byte, error) {
	if raw {
		return desk.ExportBillCSV(cmd.Context(), room)
	}
	bill, err := desk.ExportBill(cmd.Context(), room)
	if err != nil {
		return nil, err
	}
	return marshalJSON(bill)
}

func exportDetail(cmd *cobra.Command, desk *app.Desk, room string, raw bool) ([]byte, error) {
	if raw {
		return desk.ExportDetailCSV(cmd.Context(), room)
	}
	lines, err := desk.ExportDetail(cmd.Context(), room)
	if err != nil {
		return nil, err
	}
	return marshalJSON(lines)
}

func newHistoryCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "history ROOM",
		Short: "List archived invoices of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoices, err := rt.desk.History(args[0])
			if err != nil {
				return err
			}
			if invoices == nil {
				invoices = []domain.Invoice{}
			}
			return printJSON(cmd.OutOrStdout(), invoices)
		},
	}
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func printJSON(w io.Writer, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
