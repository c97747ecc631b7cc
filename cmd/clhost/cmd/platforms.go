package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tsawler/go-clhost/bindings"
	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/native"
)

var platformsJSON bool

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List platforms and devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		devices, err := listDevices(s.module)
		if err != nil {
			return err
		}
		if platformsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(devices)
		}
		renderDevices(cmd.OutOrStdout(), devices)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
	platformsCmd.Flags().BoolVar(&platformsJSON, "json", false, "print JSON instead of a table")
}

// deviceRow is one device with the platform it belongs to.
type deviceRow struct {
	Platform      string `json:"platform"`
	Device        string `json:"device"`
	Type          string `json:"type"`
	ComputeUnits  int64  `json:"compute_units"`
	GlobalMemSize int64  `json:"global_mem_size"`
	Version       string `json:"version"`
}

func deviceTypeName(t int64) string {
	switch uint64(t) {
	case native.DeviceTypeCPU:
		return "CPU"
	case native.DeviceTypeGPU:
		return "GPU"
	case native.DeviceTypeAccelerator:
		return "Accelerator"
	case native.DeviceTypeCustom:
		return "Custom"
	default:
		return fmt.Sprintf("%#x", t)
	}
}

// listDevices walks every platform through the bindings, so the same checks
// apply as for scripts.
func listDevices(m *bindings.Module) ([]deviceRow, error) {
	platforms, err := m.Call("getPlatformIDs")
	if err != nil {
		return nil, err
	}
	plats, _ := platforms.Elems()

	var rows []deviceRow
	for _, p := range plats {
		pname, err := m.Call("getPlatformInfo", p, host.Int(int64(native.PlatformName)))
		if err != nil {
			return nil, err
		}
		devices, err := m.Call("getDeviceIDs", p)
		if err != nil {
			return nil, err
		}
		devs, _ := devices.Elems()
		for _, d := range devs {
			row := deviceRow{Platform: str(pname)}
			for param, dst := range map[uint32]*string{
				native.DeviceName:    &row.Device,
				native.DeviceVersion: &row.Version,
			} {
				v, err := m.Call("getDeviceInfo", d, host.Int(int64(param)))
				if err != nil {
					return nil, err
				}
				*dst = str(v)
			}
			for param, dst := range map[uint32]*int64{
				native.DeviceType:            new(int64),
				native.DeviceMaxComputeUnits: &row.ComputeUnits,
				native.DeviceGlobalMemSize:   &row.GlobalMemSize,
			} {
				v, err := m.Call("getDeviceInfo", d, host.Int(int64(param)))
				if err != nil {
					return nil, err
				}
				*dst, _ = v.AsInt()
				if param == native.DeviceType {
					row.Type = deviceTypeName(*dst)
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func str(v host.Value) string {
	s, _ := v.AsString()
	return s
}

func renderDevices(w io.Writer, rows []deviceRow) {
	table := tablewriter.NewWriter(w)
	table.Header("Platform", "Device", "Type", "Compute Units", "Global Memory", "Version")
	for _, r := range rows {
		table.Append([]string{
			r.Platform,
			r.Device,
			r.Type,
			fmt.Sprintf("%d", r.ComputeUnits),
			fmt.Sprintf("%.1f MB", float64(r.GlobalMemSize)/(1<<20)),
			r.Version,
		})
	}
	table.Render()
}
