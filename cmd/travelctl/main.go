// Command travelctl is a terminal client for the wanderly agent API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"wanderly/config"
	"wanderly/database"
	inventoryRepo "wanderly/database/repository/inventory"
	"wanderly/models"
	"wanderly/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
	threadID  string
)

var rootCmd = &cobra.Command{
	Use:   "travelctl",
	Short: "Talk to the wanderly travel agent from the terminal",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the travel agent.

When the agent locks a booking and waits for payment, type "pay" or
"fail <reason>" to send the payment callback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if threadID == "" {
			threadID = uuid.New().String()
		}
		r := &repl{api: client(), threadID: threadID, out: cmd.OutOrStdout()}
		return r.run(cmd.Context(), cmd.InOrStdin())
	},
}

var stateCmd = &cobra.Command{
	Use:   "state <thread-id>",
	Short: "Print a stored conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := client().State(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "step: %s\npending: %s\nrequirements: %+v\n", st.Step, st.PendingNode, st.Requirements)
		for _, m := range st.Messages {
			fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", m.Role+":", m.Content)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <thread-id>",
	Short: "Forget a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client().Reset(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "reset", args[0])
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the agent graph as a mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		chart, err := client().Graph(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), chart)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders <thread-id>",
	Short: "List the flights and hotels a conversation has held or booked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := client().Orders(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printOrders(cmd.OutOrStdout(), orders)
		return nil
	},
}

func printOrders(w io.Writer, orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "no orders")
		return
	}
	for _, o := range orders {
		what := ""
		switch {
		case o.Flight != nil:
			what = fmt.Sprintf("%s %s %s->%s", o.Flight.Airline, o.Flight.FlightNumber, o.Flight.Origin, o.Flight.Destination)
		case o.Hotel != nil:
			what = fmt.Sprintf("%s, %s", o.Hotel.Name, o.Hotel.Location)
		}
		fmt.Fprintf(w, "%-8s %-10s %10.2f %-4s %s  (%s)\n", o.Kind, o.Status, o.Amount, o.Currency, what, o.ID)
	}
}

var seedCmd = &cobra.Command{
	Use:   "seed <inventory.json>",
	Short: "Load flights and hotels into the inventory database",
	Long: `Load flights and hotels into MongoDB. The file holds
{"flights": [...], "hotels": [...]} in the API's JSON format. The
database is taken from the same environment as the server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		config.LoadConfig()
		database.InitDB()
		defer database.Close(context.Background())

		repo := inventoryRepo.NewMongoInventoryRepo(database.DB())
		flights, hotels, err := loadInventory(cmd.Context(), f, repo, config.AppConfig.DefaultCurrency)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d flights and %d hotels\n", flights, hotels)
		return nil
	},
}

var (
	tokenSecret string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint a development JWT for a user id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := utils.GenerateToken(tokenSecret, args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

func client() *apiClient {
	return newAPIClient(serverURL, token, timeout)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("WANDERLY_URL", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("WANDERLY_TOKEN"), "Bearer token when the server requires auth")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")

	chatCmd.Flags().StringVarP(&threadID, "thread", "t", "", "Resume an existing thread (default: new thread)")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", os.Getenv("JWT_SECRET"), "Signing secret (default: $JWT_SECRET)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", utils.DefaultTokenTTL, "Token lifetime")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(seedCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
