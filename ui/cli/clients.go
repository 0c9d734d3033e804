// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/toeirei/clientbook/internal/console"
	"github.com/toeirei/clientbook/internal/i18n"
	"github.com/toeirei/clientbook/internal/model"
)

// clipboardWrite is a package-level variable so tests can run without a
// system clipboard.
var clipboardWrite = clipboard.WriteAll

func parseClientID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s", i18n.T("error.numeric_id"))
	}
	return id, nil
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show all clients with their phone numbers",
		Args:  cobra.NoArgs,
	}
	format := formatFlag(a, cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		list, err := a.store.ListClients(cmd.Context())
		if err != nil {
			return describe(err)
		}
		return console.RenderClients(cmd.OutOrStdout(), list, f)
	}
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <first-name> <last-name> <email> [phone...]",
		Short: "Add a client, optionally with phone numbers",
		Example: `  clientbook add Ivan Petrov ivan@example.com +7-900-123-45-67
  clientbook add Anna Smirnova anna@example.com`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.store.AddClient(cmd.Context(), args[0], args[1], args[2], args[3:])
			if err != nil {
				return describe(err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("add_client.success", args[0], args[1], id))
			return nil
		},
	}
}

func newAddPhoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-phone <client-id> <phone>",
		Short: "Add a phone number to a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.store.AddPhone(cmd.Context(), id, args[1]); err != nil {
				return describe(console.WithClient(id, err))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("add_phone.success", args[1], id))
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var firstName, lastName, email string
	var phones []string
	var clearPhones bool
	cmd := &cobra.Command{
		Use:   "update <client-id>",
		Short: "Change a client's name, email or phone list",
		Long: `Changes only the fields given as flags. Passing --phone one or more times
replaces the whole phone list; --clear-phones removes every phone.`,
		Example: `  clientbook update 1 --email ivan.petrov@example.com
  clientbook update 1 --phone +7-900-000-00-01 --phone +7-900-000-00-02`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			var patch model.ClientPatch
			if cmd.Flags().Changed("first-name") {
				patch.FirstName = model.Some(firstName)
			}
			if cmd.Flags().Changed("last-name") {
				patch.LastName = model.Some(lastName)
			}
			if cmd.Flags().Changed("email") {
				patch.Email = model.Some(email)
			}
			switch {
			case clearPhones && len(phones) > 0:
				return fmt.Errorf("--phone and --clear-phones cannot be combined")
			case clearPhones:
				patch.Phones = model.Some([]string{})
			case len(phones) > 0:
				patch.Phones = model.Some(phones)
			}
			if err := a.store.UpdateClient(cmd.Context(), id, patch); err != nil {
				return describe(console.WithClient(id, err))
			}
			if patch.IsEmpty() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("update_client.no_changes"))
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("update_client.success", id))
			return nil
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "New first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "New last name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringArrayVar(&phones, "phone", nil, "Phone number of the new list (repeatable)")
	cmd.Flags().BoolVar(&clearPhones, "clear-phones", false, "Remove every phone number")
	return cmd
}

func newDeletePhoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-phone <client-id> <phone>",
		Short: "Remove a phone number from a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			removed, err := a.store.DeletePhone(cmd.Context(), id, args[1])
			if err != nil {
				return describe(console.WithClient(id, err))
			}
			if !removed {
				return fmt.Errorf("%s", i18n.T("delete_phone.not_found", args[1], id))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("delete_phone.success", args[1], id))
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Delete a client together with its phone numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			current, err := a.store.GetClient(cmd.Context(), id)
			if err != nil {
				return describe(console.WithClient(id, err))
			}
			if !yes {
				answer := promptForConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(), i18n.T("prompt.confirm_delete", current.FullName(), id))
				if !console.IsYes(answer) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("delete_client.cancelled"))
					return nil
				}
			}
			if err := a.store.DeleteClient(cmd.Context(), id); err != nil {
				return describe(console.WithClient(id, err))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("delete_client.success", current.FullName(), id))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newFindCmd(a *app) *cobra.Command {
	var firstName, lastName, email, phone string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find clients by partial, case-insensitive matches",
		Long: `Finds clients whose fields contain the given values, ignoring case.
All given criteria must match. Without criteria every client is listed.`,
		Example: `  clientbook find --first-name an
  clientbook find --phone 900 --format json`,
		Args: cobra.NoArgs,
	}
	format := formatFlag(a, cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		criteria := model.SearchCriteria{
			FirstName: model.FromNonEmpty(firstName),
			LastName:  model.FromNonEmpty(lastName),
			Email:     model.FromNonEmpty(email),
			Phone:     model.FromNonEmpty(phone),
		}
		results, err := a.store.FindClients(cmd.Context(), criteria)
		if err != nil {
			return describe(err)
		}
		return console.RenderClients(cmd.OutOrStdout(), results, f)
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "Part of the first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Part of the last name")
	cmd.Flags().StringVar(&email, "email", "", "Part of the email")
	cmd.Flags().StringVar(&phone, "phone", "", "Part of any phone number")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var copyPhones bool
	cmd := &cobra.Command{
		Use:   "show <client-id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
	}
	format := formatFlag(a, cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		id, err := parseClientID(args[0])
		if err != nil {
			return err
		}
		s, err := a.store.GetClient(cmd.Context(), id)
		if err != nil {
			return describe(console.WithClient(id, err))
		}
		if err := console.RenderClient(cmd.OutOrStdout(), *s, f); err != nil {
			return err
		}
		if copyPhones {
			if !s.HasPhones() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("show.nothing_to_copy"))
				return nil
			}
			if err := clipboardWrite(strings.Join(s.Numbers, "\n")); err != nil {
				return fmt.Errorf("%s", i18n.T("show.copy_failed", err))
			}
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("show.copied", s.PhoneCount))
		}
		return nil
	}
	cmd.Flags().BoolVar(&copyPhones, "copy", false, "Copy the phone numbers to the clipboard")
	return cmd
}

// promptForConfirmation displays a prompt and reads a line from in.
func promptForConfirmation(in io.Reader, out io.Writer, prompt string) string {
	_, _ = fmt.Fprint(out, prompt)
	reader := bufio.NewReader(in)
	answer, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(answer))
}
