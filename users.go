package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tedpearson/eeg-emotion/internal/users"
)

var (
	username string
	password string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check account credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd, predictCmd, historyCmd} {
		c.Flags().StringVarP(&username, "user", "u", "", "Username")
		_ = c.MarkFlagRequired("user")
	}
	for _, c := range []*cobra.Command{signupCmd, loginCmd, predictCmd, historyCmd} {
		c.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	}
}

// readPassword returns the --password flag or prompts for it without echo.
func readPassword(cmd *cobra.Command) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	pw, err := readPassword(cmd)
	if err != nil {
		return err
	}
	if err := users.NewStore(cfg.UsersFile).Signup(username, pw); err != nil {
		return err
	}
	logger.Info("account created", zap.String("user", username))
	fmt.Fprintln(cmd.OutOrStdout(), "Account created successfully.")
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	r, err := authenticate(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in successfully. Member since %s.\n", r.Created().Format(time.DateTime))
	return nil
}

func authenticate(cmd *cobra.Command) (users.Record, error) {
	pw, err := readPassword(cmd)
	if err != nil {
		return users.Record{}, err
	}
	r, err := users.NewStore(cfg.UsersFile).Login(username, pw)
	if err != nil {
		logger.Warn("login failed", zap.String("user", username), zap.Error(err))
		return users.Record{}, err
	}
	return r, nil
}
