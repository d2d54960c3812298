package main

import (
	"github.com/Zuo-Peng/wa-contacts/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var messagesCSV string

	cmd := &cobra.Command{
		Use:   "open <name>",
		Short: "Open the messages CSV in $EDITOR at a contact's newest message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("messages-csv") {
				cfg.MessagesCSV = messagesCSV
			}
			return open.Contact(cfg.MessagesCSV, args[0])
		},
	}

	cmd.Flags().StringVar(&messagesCSV, "messages-csv", "whatsapp_messages.csv", "Messages table to open")

	return cmd
}
