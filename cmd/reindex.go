package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"corpora/src/log"
)

// reindexCmd represents the reindex command
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the index for every tenant",
	Long: `The reindex command enumerates all tenants with stored documents and
rebuilds each tenant's index from its current corpus. Useful after
changing the embedding model or recovering from corrupt artifacts.`,
	Run: RunReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func RunReindex(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	kbService, docs, err := buildKnowledgeBase()
	if err != nil {
		log.Error(err, "failed to initialize knowledge base")
		return
	}

	tenants, err := docs.Tenants(ctx)
	if err != nil {
		log.Error(err, "failed to enumerate tenants")
		return
	}
	if len(tenants) == 0 {
		fmt.Println("no tenants found")
		return
	}

	bar := progressbar.Default(int64(len(tenants)), "reindexing tenants")
	var built, empty, failed int
	for _, tenant := range tenants {
		ok, err := kbService.BuildIndex(ctx, tenant)
		switch {
		case err != nil:
			failed++
			log.Error(err, "failed to rebuild tenant index", "tenant", tenant)
		case ok:
			built++
		default:
			empty++
		}
		bar.Add(1)
	}

	fmt.Printf("reindex complete: %d built, %d empty, %d failed\n", built, empty, failed)
}
