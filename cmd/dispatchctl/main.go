// cmd/dispatchctl/main.go
package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	conn := &connection{}

	rootCmd := &cobra.Command{
		Use:   "dispatchctl",
		Short: "Control a running bot dispatcher",
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			conn.Close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&conn.addr, "addr", "localhost:50051", "gRPC address of the dispatcher")
	rootCmd.PersistentFlags().StringSliceVar(&conn.etcdEndpoints, "etcd", nil, "etcd endpoints used to discover a dispatcher instead of --addr")
	rootCmd.PersistentFlags().DurationVar(&conn.timeout, "timeout", defaultTimeout, "timeout for each call")

	rootCmd.AddCommand(OrderCmd(conn))
	rootCmd.AddCommand(BotCmd(conn))
	rootCmd.AddCommand(StatusCmd(conn))

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
