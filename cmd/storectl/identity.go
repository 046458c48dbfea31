package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/infrastructure/storage"
)

func newIdentityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Show, clear or list the identities stored for sessions",
	}

	var sessionID string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the identity stored for a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(kv storage.KeyValueStore, prefix string) error {
				st := storage.NewIdentityStorage(kv, prefix, sessionID)
				id, err := st.Load(cmd.Context())
				switch {
				case errors.Is(err, identity.ErrMalformedIdentity):
					fmt.Fprintf(a.out, "%s: malformed identity (%v)\n", st.Key(), err)
					return nil
				case err != nil:
					return err
				case id == nil:
					fmt.Fprintf(a.out, "%s: no identity stored\n", st.Key())
					return nil
				}
				fmt.Fprintf(a.out, "%s: %s <%s> (%s)\n", st.Key(), id.Name, id.Email, id.ID)
				return nil
			})
		},
	}
	show.Flags().StringVar(&sessionID, "session", "", "Session id")
	_ = show.MarkFlagRequired("session")

	var clearID string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the identity stored for a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(kv storage.KeyValueStore, prefix string) error {
				st := storage.NewIdentityStorage(kv, prefix, clearID)
				if err := st.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "cleared %s\n", st.Key())
				return nil
			})
		},
	}
	clearCmd.Flags().StringVar(&clearID, "session", "", "Session id")
	_ = clearCmd.MarkFlagRequired("session")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the sessions that have a stored identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(kv storage.KeyValueStore, prefix string) error {
				keys, err := kv.Keys(cmd.Context(), storage.SessionKeyPrefix(prefix))
				if err != nil {
					return err
				}
				sort.Strings(keys)
				for _, key := range keys {
					rest := strings.TrimPrefix(key, storage.SessionKeyPrefix(prefix))
					fmt.Fprintln(a.out, strings.TrimSuffix(rest, ":user"))
				}
				if len(keys) == 0 {
					fmt.Fprintln(a.out, "no stored identities")
				}
				return nil
			})
		},
	}

	cmd.AddCommand(show, clearCmd, list)
	return cmd
}

func (a *app) withStore(cmd *cobra.Command, fn func(kv storage.KeyValueStore, prefix string) error) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	kv, release, err := a.openStore(cmd.Context(), cfg, a.logger())
	if err != nil {
		return fmt.Errorf("open identity storage: %w", err)
	}
	defer release()
	return fn(kv, cfg.Storage.KeyPrefix)
}
