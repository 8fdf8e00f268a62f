package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agritrace/provchain/internal/commitreveal"
	"github.com/agritrace/provchain/internal/hashing"
	"github.com/agritrace/provchain/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL string
	cfgFile   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "anchorctl",
	Short: "Provenance anchoring CLI",
	Long: `anchorctl is the command-line interface for the provenance
anchoring service.

It computes the canonical digests used across the supply chain
(keccak256 identifier hashes, sha256 merkle roots, commit-reveal
pairs) and talks to a running anchord instance for content storage.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.anchorctl")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server_url")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.anchorctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "anchord base URL (default http://localhost:8080)")

	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(merkleCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(commitVerifyCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}

func newClient() *client.Client {
	return client.New(serverURL, client.WithTimeout(30*time.Second))
}

// ── hash ─────────────────────────────────────────────────────────────────────

var hashAlgo string

var hashCmd = &cobra.Command{
	Use:   "hash <field> [field] ...",
	Short: "Compute the canonical digest of dash-joined fields",
	Long: `Hash joins the given fields with "-" and digests the result.

The default keccak256 matches the on-chain identifier hashes (crop IDs,
batch hashes, location hashes); --algo sha256 matches the merkle and
commit-reveal layer:

  anchorctl hash did:farmer:abc rice 2026-03-14T09:26:53Z
  anchorctl hash --algo sha256 leaf1leaf2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := hashing.Join(args...)
		switch hashAlgo {
		case "keccak256":
			fmt.Println(hashing.Keccak256(input))
		case "sha256":
			fmt.Println(hashing.SHA256(input))
		default:
			return fmt.Errorf("unknown algorithm %q (want keccak256 or sha256)", hashAlgo)
		}
		return nil
	},
}

func init() {
	hashCmd.Flags().StringVar(&hashAlgo, "algo", "keccak256", "Digest algorithm: keccak256 or sha256")
}

// ── merkle ───────────────────────────────────────────────────────────────────

var merkleCmd = &cobra.Command{
	Use:   "merkle <leaf> [leaf] ...",
	Short: "Compute the merkle root of the given leaves",
	Long: `Merkle aggregates the leaves into a single root using the
packaging-stage tree: sha256 over concatenated hex, odd trailing leaf
paired with itself. A single leaf is returned verbatim.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(hashing.RootStrings(args))
		return nil
	},
}

// ── commit / commit-verify ──────────────────────────────────────────────────

var commitCmd = &cobra.Command{
	Use:   "commit [file]",
	Short: "Build a commit-reveal pair over a JSON payload",
	Long: `Commit reads a JSON payload from the given file (or stdin) and
prints the commit-reveal triple: a fresh random nonce, the reveal hash
of the payload, and the commit hash binding both.

Publish the commit hash immediately; disclose payload and nonce later
to prove the content was fixed in advance.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readPayload(args)
		if err != nil {
			return err
		}

		pair, err := commitreveal.Commit(payload)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(pair)
	},
}

var (
	verifyNonce  string
	verifyReveal string
	verifyCommit string
)

var commitVerifyCmd = &cobra.Command{
	Use:   "commit-verify [file]",
	Short: "Verify a commit-reveal pair against a JSON payload",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readPayload(args)
		if err != nil {
			return err
		}

		pair := commitreveal.Pair{
			Nonce:      verifyNonce,
			RevealHash: hashing.Digest(verifyReveal),
			CommitHash: hashing.Digest(verifyCommit),
		}
		if !commitreveal.Verify(pair, payload) {
			return fmt.Errorf("verification FAILED: payload or nonce does not match the commit")
		}
		fmt.Println("verified")
		return nil
	},
}

func init() {
	commitVerifyCmd.Flags().StringVar(&verifyNonce, "nonce", "", "Nonce from the original commit")
	commitVerifyCmd.Flags().StringVar(&verifyReveal, "reveal", "", "Reveal hash from the original commit")
	commitVerifyCmd.Flags().StringVar(&verifyCommit, "commit", "", "Commit hash to verify against")
	commitVerifyCmd.MarkFlagRequired("nonce")  //nolint:errcheck
	commitVerifyCmd.MarkFlagRequired("reveal") //nolint:errcheck
	commitVerifyCmd.MarkFlagRequired("commit") //nolint:errcheck
}

// readPayload reads JSON from the optional file argument or stdin.
func readPayload(args []string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	payload, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return payload, nil
}

// ── storage commands ─────────────────────────────────────────────────────────

var uploadPin bool

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Store a JSON document on the anchoring service",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readPayload(args)
		if err != nil {
			return err
		}

		receipt, err := newClient().Upload(context.Background(), payload, uploadPin)
		if err != nil {
			return err
		}
		fmt.Printf("cid:    %s\nsize:   %d\npinned: %v\n", receipt.CID, receipt.Size, receipt.Pinned)
		return nil
	},
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadPin, "pin", false, "Pin the content for durability")
}

var getCmd = &cobra.Command{
	Use:   "get <cid>",
	Short: "Fetch stored content by its CID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		receipt, err := newClient().Fetch(context.Background(), args[0])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(receipt.Data, '\n'))
		return err
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <cid>",
	Short: "Pin stored content for durability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		receipt, err := newClient().Pin(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("pinned %s\n", receipt.CID)
		return nil
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <cid>",
	Short: "Remove the durability pin from stored content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		receipt, err := newClient().Unpin(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("unpinned %s\n", receipt.CID)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the service's storage backend health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().Health(context.Background())
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(status)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the anchorctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("anchorctl", version)
	},
}
