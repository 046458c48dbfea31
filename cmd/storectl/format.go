package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

func newFormatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format values the way the storefront displays them",
	}

	naira := &cobra.Command{
		Use:   "naira <amount>",
		Short: "Format a whole-Naira amount, e.g. 75000 -> ₦75,000",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be a whole number: %w", err)
			}
			fmt.Fprintln(a.out, valueobject.FormatNaira(amount))
			return nil
		},
	}

	cmd.AddCommand(naira)
	return cmd
}
