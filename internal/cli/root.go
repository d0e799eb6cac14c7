package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `
                 _           _ _
  _ __   __ _  | |__  _   _| | | __
 | '_ \ / _` + "`" + ` | | '_ \| | | | | |/ /
 | |_) | (_| | | |_) | |_| | |   <
 | .__/ \__, | |_.__/ \__,_|_|_|\_\
 |_|    |___/`

var rootCmd = &cobra.Command{
	Use:   "pgbulk",
	Short: "Chunked parallel bulk loader for PostgreSQL",
	Long: asciiLogo + `

pgbulk streams tabular data into PostgreSQL with COPY. Input is split
into fixed-size chunks, each chunk is loaded in its own connection and
transaction, and a bounded worker pool keeps several COPY streams in
flight at once.

Failed chunks never block the rest of the load: every chunk is
attempted, and the first failure is reported once all workers drain.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - Input chunking failed
  13 - Bulk load failed (one or more chunks rejected)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgbulk")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
