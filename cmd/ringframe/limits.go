package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	rb "github.com/sushydev/circular_buffer_go"
)

func newLimitsCommand() *cobra.Command {
	var capacity int

	command := &cobra.Command{
		Use:   "limits",
		Short: "Show the capacity limit and storage cost of each buffer model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if capacity < 0 {
				return errors.Errorf("capacity must not be negative, got %d", capacity)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "MODEL\tMAX CAPACITY\tSTORAGE FOR %s\n", humanize.IBytes(uint64(capacity)))

			for _, model := range []rb.Model{rb.CapacityPlusOne, rb.FullUtilization} {
				limit := rb.New(0, rb.WithModel(model)).Limit()

				storage := "exceeds limit"
				if capacity <= limit {
					storage = humanize.IBytes(uint64(storageSize(model, capacity)))
				}

				fmt.Fprintf(w, "%s\t%s\t%s\n", model, humanize.Comma(int64(limit)), storage)
			}

			return w.Flush()
		},
	}

	command.Flags().IntVar(&capacity, "capacity", rb.DefaultCapacity, "Capacity to compute the storage cost for")

	return command
}

// storageSize is the length of the backing array a model allocates.
func storageSize(model rb.Model, capacity int) int {
	if model == rb.CapacityPlusOne {
		return capacity + 1
	}
	return capacity
}
