package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

const maskedValue = "******"

// showConfigCommand prints the resolved configuration as a table.
func (a *App) showConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show-config",
		Short: "Print the resolved configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), a.configTable())
			return nil
		},
	}
}

func (a *App) configTable() *uitable.Table {
	keys := a.v.AllKeys()
	sort.Strings(keys)

	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("KEY", "VALUE")
	for _, k := range keys {
		if k == configFlagName || k == "help" {
			continue
		}
		var value any = a.v.Get(k)
		if strings.HasSuffix(k, "password") && a.v.GetString(k) != "" {
			value = maskedValue
		}
		table.AddRow(k, value)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		table.AddRow("", "")
		table.AddRow("config file", used)
	}

	return table
}
