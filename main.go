package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/billcycle/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compute":
		runCompute(ctx, os.Args[2:])
	case "decrypt":
		runDecrypt(ctx, os.Args[2:])
	case "history", "ls":
		runHistory(ctx, os.Args[2:])
	case "show":
		runShow(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parseArgs parses flags that may appear before or after positional arguments
func parseArgs(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func requireArgs(command string, args []string, n int) {
	if len(args) != n {
		fmt.Fprintf(os.Stderr, "Error: %s expects %d argument(s), got %d\n\n", command, n, len(args))
		printCommandHelp(command)
		os.Exit(1)
	}
}

func runCompute(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("compute", flag.ExitOnError)
	encryptShort := fs.Bool("e", false, "Encrypt the result")
	encryptLong := fs.Bool("encrypt", false, "Encrypt the result")
	password := fs.String("password", "", "Password for encryption")
	outShort := fs.String("o", "", "Write the result to a file")
	outLong := fs.String("output", "", "Write the result to a file")
	force := fs.Bool("force", false, "Overwrite the output file")
	noSave := fs.Bool("no-save", false, "Do not record the result in history")
	table := fs.Bool("table", false, "Print a table instead of JSON")
	positional := parseArgs(fs, args)
	requireArgs("compute", positional, 1)

	app := cmd.NewApp()
	defer app.Close()

	cmd.Compute(ctx, app, cmd.ComputeOptions{
		Date:     positional[0],
		Encrypt:  *encryptShort || *encryptLong,
		Password: *password,
		Output:   firstNonEmpty(*outLong, *outShort),
		Force:    *force,
		NoSave:   *noSave,
		Table:    *table,
	})
}

func runDecrypt(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
	password := fs.String("password", "", "Password for decryption")
	outShort := fs.String("o", "", "Write the payload to a file")
	outLong := fs.String("output", "", "Write the payload to a file")
	force := fs.Bool("force", false, "Overwrite the output file")
	table := fs.Bool("table", false, "Print a table instead of JSON")
	positional := parseArgs(fs, args)
	requireArgs("decrypt", positional, 1)

	app := cmd.NewApp()
	defer app.Close()

	cmd.Decrypt(ctx, app, cmd.DecryptOptions{
		Input:    positional[0],
		Password: *password,
		Output:   firstNonEmpty(*outLong, *outShort),
		Force:    *force,
		Table:    *table,
	})
}

func runHistory(_ context.Context, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	requireArgs("history", parseArgs(fs, args), 0)

	app := cmd.NewApp()
	defer app.Close()

	cmd.History(app)
}

func runShow(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	password := fs.String("password", "", "Password for decryption")
	table := fs.Bool("table", false, "Print a table instead of JSON")
	positional := parseArgs(fs, args)
	requireArgs("show", positional, 1)

	app := cmd.NewApp()
	defer app.Close()

	cmd.Show(ctx, app, positional[0], *password, *table)
}

func runRm(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	positional := parseArgs(fs, args)

	app := cmd.NewApp()
	defer app.Close()

	cmd.Remove(ctx, app, positional)
}

func runDiff(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	password := fs.String("password", "", "Password for encrypted records")
	positional := parseArgs(fs, args)
	requireArgs("diff", positional, 2)

	app := cmd.NewApp()
	defer app.Close()

	cmd.Diff(ctx, app, positional[0], positional[1], *password)
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	requireArgs("compact", parseArgs(fs, args), 0)

	app := cmd.NewApp()
	defer app.Close()

	cmd.Compact(app)
}

func runKeyring(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: billcycle keyring <save|delete|status>")
		os.Exit(1)
	}

	app := cmd.NewApp()
	defer app.Close()

	switch args[0] {
	case "save":
		cmd.KeyringSave(ctx, app)
	case "delete":
		cmd.KeyringDelete(app)
	case "status":
		cmd.KeyringStatus(app)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: billcycle completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func printUsage() {
	fmt.Println("billcycle - Billing cycle milestones with password-protected records")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  billcycle <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  compute     Compute milestones for a start date")
	fmt.Println("  decrypt     Decrypt a record and print its milestones")
	fmt.Println("  history     List stored billing cycles")
	fmt.Println("  show        Print a stored billing cycle")
	fmt.Println("  rm          Remove stored billing cycles")
	fmt.Println("  diff        Compare the milestones of two records")
	fmt.Println("  compact     Compact the history store")
	fmt.Println("  keyring     Manage the password in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  billcycle compute 01/15/2025                     # Print milestones as JSON")
	fmt.Println("  billcycle compute --encrypt -o cycle.json 01/15/2025")
	fmt.Println("  billcycle decrypt cycle.json                     # Recover the milestones")
	fmt.Println("  billcycle history                                # List stored cycles")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  BILLCYCLE_PASSWORD     Password for encrypt/decrypt")
	fmt.Println("  BILLCYCLE_STORE        History store path (default .billcycle)")
	fmt.Println("  BILLCYCLE_LOG_LEVEL    debug, info, warn or error (default warn)")
	fmt.Println("  BILLCYCLE_NO_KEYRING   Never read or write the OS keyring")
	fmt.Println("  BILLCYCLE_NO_HISTORY   Do not record computations")
	fmt.Println()
	fmt.Println("Use 'billcycle help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "compute":
		fmt.Println("billcycle compute [-e|--encrypt] [--password P] [-o|--output FILE] [--force] [--no-save] [--table] <MM/DD/YYYY>")
		fmt.Println()
		fmt.Println("Computes the seven billing cycle milestones for a start date:")
		fmt.Println("  billing_cycle_start +0d, bill_in_tlife_app +4d, funds_avail_pre_ap +16d,")
		fmt.Println("  autopay_draft +17d, billing_cycle_close +30d, service_suspension_risk +37d,")
		fmt.Println("  number_loss_risk +90d")
		fmt.Println()
		fmt.Println("With --encrypt the JSON payload is sealed with AES-256-GCM under a key")
		fmt.Println("derived from the password (PBKDF2-HMAC-SHA256, fresh salt per record).")
		fmt.Println("The result is recorded in the history store unless --no-save is given.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -e, --encrypt     Encrypt the result")
		fmt.Println("  --password P      Password (otherwise env, keyring or prompt)")
		fmt.Println("  -o, --output FILE Write to FILE inside the current directory")
		fmt.Println("  --force           Overwrite FILE if it exists")
		fmt.Println("  --no-save         Do not record in history")
		fmt.Println("  --table           Print an aligned table instead of JSON")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  billcycle compute 01/15/2025")
		fmt.Println("  billcycle compute --encrypt -o cycle.json 01/15/2025")
	case "decrypt":
		fmt.Println("billcycle decrypt [--password P] [-o|--output FILE] [--force] [--table] <record.json|->")
		fmt.Println()
		fmt.Println("Decrypts an encrypted record and prints the milestone payload.")
		fmt.Println("Plaintext payloads are validated and printed as-is.")
		fmt.Println("Use - to read the record from stdin.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  billcycle decrypt cycle.json")
		fmt.Println("  billcycle decrypt --table cycle.json")
	case "history", "ls":
		fmt.Println("billcycle history")
		fmt.Println()
		fmt.Println("Lists stored billing cycles with their start date, whether they are")
		fmt.Println("encrypted and when they were computed.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "show":
		fmt.Println("billcycle show [--password P] [--table] <MM/DD/YYYY>")
		fmt.Println()
		fmt.Println("Prints the stored billing cycle for a start date, decrypting it if needed.")
	case "rm":
		fmt.Println("billcycle rm <MM/DD/YYYY> [MM/DD/YYYY...]")
		fmt.Println()
		fmt.Println("Removes stored billing cycles and compacts the history store.")
	case "diff":
		fmt.Println("billcycle diff [--password P] <a.json> <b.json>")
		fmt.Println()
		fmt.Println("Compares the milestones of two records or payloads line by line.")
		fmt.Println("Encrypted records are decrypted first; the same password is tried for both.")
	case "compact":
		fmt.Println("billcycle compact")
		fmt.Println()
		fmt.Println("Compacts the history store to reclaim unused disk space.")
		fmt.Println("This is automatically done after 'rm', but can be run manually.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "keyring":
		fmt.Println("billcycle keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Manages the password remembered for this history store in the OS keyring.")
		fmt.Println("'save' checks the password against the latest encrypted cycle first.")
	case "completion":
		fmt.Println("billcycle completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(billcycle completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(billcycle completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  billcycle completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
