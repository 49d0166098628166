package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/bootstrap"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/service"
)

// operator is the identity recorded for changes made from the command line.
var operator = domain.Actor{ID: "complaintctl", Role: domain.RoleAdmin}

type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	e := &env{}
	root := &cobra.Command{
		Use:           "complaintctl",
		Short:         "Administer the complaint service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
				cfg.Logger.Level = "error"
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log at the configured level")
	root.PersistentFlags().Bool("json", false, "output JSON")

	root.AddCommand(migrateCmd(e), setRoleCmd(e), listCmd(e), statsCmd(e), tokenCmd(e))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (e *env) withStores(ctx context.Context, fn func(*bootstrap.Stores) error) error {
	stores, err := bootstrap.Open(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer stores.Close()
	return fn(stores)
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Postgres.DSN == "" {
				return fmt.Errorf("POSTGRES_DSN is required")
			}
			pg, err := persistence.NewPostgres(cmd.Context(), e.cfg.Postgres, e.logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), e.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func setRoleCmd(e *env) *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "set-role <profile-id> <user|staff|admin>",
		Short: "Change the role of a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStores(cmd.Context(), func(stores *bootstrap.Stores) error {
				if create {
					if _, err := stores.Profiles.Upsert(cmd.Context(), args[0], domain.ProfileFields{}); err != nil {
						return err
					}
				}
				profiles := service.NewProfileService(stores.Profiles, stores.Avatars, nil, e.logger, 0)
				profile, err := profiles.SetRole(cmd.Context(), operator, args[0], args[1])
				if err != nil {
					return err
				}
				if asJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), dto.NewProfileResponse(profile))
				}
				renderProfiles(cmd.OutOrStdout(), []domain.Profile{*profile})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "provision the profile if it does not exist")
	return cmd
}

func listCmd(e *env) *cobra.Command {
	var as, text, status, priority string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints as a given actor would see them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStores(cmd.Context(), func(stores *bootstrap.Stores) error {
				actor, err := lookupActor(cmd.Context(), stores, as)
				if err != nil {
					return err
				}
				complaints := service.NewComplaintService(service.ComplaintDependencies{
					ComplaintRepo: stores.Complaints,
					ProfileRepo:   stores.Profiles,
					Blobs:         stores.Attachments,
					Logger:        e.logger,
				})
				views, err := complaints.ListComplaints(cmd.Context(), actor, service.ListFilter{Text: text, Status: status, Priority: priority})
				if err != nil {
					return err
				}
				if asJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), dto.NewComplaintResponses(views))
				}
				renderComplaints(cmd.OutOrStdout(), views)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "profile id to act as")
	cmd.Flags().StringVarP(&text, "query", "q", "", "text search")
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&priority, "priority", "", "priority filter")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func statsCmd(e *env) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show complaint counts as a given actor would see them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStores(cmd.Context(), func(stores *bootstrap.Stores) error {
				actor, err := lookupActor(cmd.Context(), stores, as)
				if err != nil {
					return err
				}
				dashboard := service.NewDashboardService(stores.Complaints, stores.Profiles, e.cfg.Dashboard.RecentLimit)
				stats, err := dashboard.Stats(cmd.Context(), actor)
				if err != nil {
					return err
				}
				if asJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), stats)
				}
				renderStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "profile id to act as")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func tokenCmd(e *env) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a development bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.App.Env == "production" {
				return fmt.Errorf("refusing to mint tokens in production")
			}
			tokens := auth.NewTokenManager(e.cfg.Auth.JWTSecret, e.cfg.Auth.Issuer, e.cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tokens.GenerateToken(domain.Identity{ID: args[0], Email: email, DisplayName: name})
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), map[string]any{"token": token, "expires_at": expiresAt})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	return cmd
}

func lookupActor(ctx context.Context, stores *bootstrap.Stores, id string) (domain.Actor, error) {
	profile, err := stores.Profiles.GetByID(ctx, id)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.ActorFromProfile(profile), nil
}
