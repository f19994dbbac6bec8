package commands

import (
	"database/sql"
	"log"
	"os"

	"github.com/haatos/freestyle-multibranch/internal"
	"github.com/haatos/freestyle-multibranch/internal/printer"
	"github.com/haatos/freestyle-multibranch/internal/security"
	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/haatos/freestyle-multibranch/internal/settings"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

var (
	dotenvPath string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "multibranch",
	Short: "Freestyle multi-branch job engine",
	Long: `multibranch keeps one freestyle job per source branch of a project.

Jobs are generated from the project's template for every head accepted by
the project's inclusion criteria, and removed when the head disappears.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		settings.ReadDotenv(dotenvPath)
		settings.Settings = settings.NewSettings()
		internal.InitializeConfiguration(configPath)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dotenvPath, "env", internal.DotEnvPath, "dotenv file to read settings from")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", internal.ConfigPath, "runtime configuration file")
}

// services is the wiring shared by every command that touches the database.
type services struct {
	rdb, rwdb *sql.DB

	nodeStore *store.NodeSQLiteStore
	projects  *service.ProjectService
	nodes     *service.NodeService
}

func openServices() *services {
	rdb := store.InitDatabase(true)
	rwdb := store.InitDatabase(false)
	store.RunMigrations(rwdb)
	store.RegisterKinds()

	nodeStore := store.NewNodeSQLiteStore(rdb, rwdb)
	encrypter := security.NewAESEncrypter(hashKey())
	return &services{
		rdb:       rdb,
		rwdb:      rwdb,
		nodeStore: nodeStore,
		projects: service.NewProjectService(
			store.NewProjectSQLiteStore(rdb, rwdb),
			store.NewBranchJobSQLiteStore(rdb, rwdb),
			steps.Default,
		),
		nodes: service.NewNodeService(nodeStore, encrypter),
	}
}

// hashKey returns the key protecting node SSH keys. An interactive user
// without a configured key is asked for one; otherwise a key is generated
// and appended to the dotenv file.
func hashKey() []byte {
	if settings.Settings.HashKey != "" || !printer.Interactive() {
		return security.NewHashKey(dotenvPath)
	}
	key, err := printer.ReadSecret("Hash key (leave empty to generate): ")
	if err != nil {
		log.Fatal(err)
	}
	switch len(key) {
	case 0:
		return security.NewHashKey(dotenvPath)
	case 16, 24, 32:
		os.Setenv("MULTIBRANCH_HASH_KEY", key)
		return []byte(key)
	}
	log.Fatalf("hash key must be 16, 24 or 32 bytes, got %d\n", len(key))
	return nil
}

func (s *services) Close() {
	s.rdb.Close()
	s.rwdb.Close()
}
