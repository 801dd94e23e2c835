package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redbco/redb-dbadmin/pkg/admin"
	"github.com/redbco/redb-dbadmin/pkg/dialect"
	"github.com/redbco/redb-dbadmin/pkg/logger"
)

var (
	version = "0.1.0"
	// Build information variables
	GitCommit = "unknown" // Git commit hash
	BuildTime = "unknown" // Build timestamp
)

var resource dialect.Resource

// printVersionInfo displays detailed version information
func printVersionInfo() {
	fmt.Printf("dbadmin v%s\n", version)
	fmt.Printf("Built: %s, from commit: %s\n", BuildTime, GitCommit)
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbadmin",
	Short: "Multi-dialect database administration",
	Long: "Administers database accounts, roles, privileges and object permissions across Oracle, PostgreSQL, " +
		"MySQL, SQL Server and SQLite through one normalized operation set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("version") != nil && cmd.Flags().Lookup("version").Changed {
			printVersionInfo()
			return nil
		}
		return cmd.Help()
	},
}

// withAdministration connects the facade, runs the action and always
// releases the connection.
func withAdministration(action func(ctx context.Context, a *admin.Administration) error) error {
	log := logger.New("dbadmin", version)
	a := admin.New(resource, log)

	ctx := context.Background()
	if err := a.Connect(ctx); err != nil {
		return err
	}
	defer a.Disconnect()

	return action(ctx, a)
}

func printNames(names []string) {
	for _, name := range names {
		fmt.Println(name)
	}
}

// driverList names the dialects linked into this binary.
func driverList() string {
	ids := dialect.Registered()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&resource.Name, "name", "default", "Logical resource name used in logs and errors")
	rootCmd.PersistentFlags().StringVar(&resource.Driver, "driver", "", "Database driver identifier ("+driverList()+", or a driver name or legacy driver class)")
	rootCmd.PersistentFlags().StringVar(&resource.Host, "host", "localhost", "Database host")
	rootCmd.PersistentFlags().IntVar(&resource.Port, "port", 0, "Database port")
	rootCmd.PersistentFlags().StringVar(&resource.Database, "database", "", "Database, service or file name")
	rootCmd.PersistentFlags().StringVar(&resource.Principal, "user", "", "Administrative principal")
	rootCmd.PersistentFlags().StringVar(&resource.Password, "password", "", "Password of the administrative principal")
	rootCmd.PersistentFlags().BoolVar(&resource.SSL, "ssl", false, "Enable transport encryption")

	rootCmd.Flags().Bool("version", false, "Show version information and exit")

	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(timeCmd)
}

// timeCmd prints the server timestamp.
var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Show the database server time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdministration(func(ctx context.Context, a *admin.Administration) error {
			ts, err := a.SystemTime(ctx)
			if err != nil {
				return err
			}
			fmt.Println(ts.Format("2006-01-02 15:04:05 MST"))
			return nil
		})
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
