// Package main is the depositor's command line tool. It creates burner
// identities and commitment secrets for presale deposits, keeps them in an
// encrypted wallet store, and prints the claim proof when the presale is
// finalized.
package main

import (
	"crypto/cipher"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/daralabs/dara/internal/client/walletstore"
	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/stealth"
)

const passphraseEnv = "DARA_STORE_PASSPHRASE"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: burner [-store path] <command> [flags]

Commands:
  deposit   generate a burner identity and commitment for a presale
  claim     print the claim proof for a recorded deposit
  import    record a stealth wallet returned by the swap pipeline
  list      list recorded deposits and wallets

The store passphrase is read from %s.
`, passphraseEnv)
	os.Exit(2)
}

func main() {
	storePath := flag.String("store", "wallets.json", "path to the encrypted wallet store")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	passphrase := os.Getenv(passphraseEnv)
	if passphrase == "" {
		fatalf("%s is not set", passphraseEnv)
	}
	aead, err := walletstore.NewAEADFromPassphrase(passphrase)
	if err != nil {
		fatalf("derive store key: %v", err)
	}

	store, err := walletstore.Open(*storePath)
	if err != nil {
		fatalf("open store: %v", err)
	}

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "deposit":
		runDeposit(store, aead, args)
	case "claim":
		runClaim(store, aead, args)
	case "import":
		runImport(store, aead, args)
	case "list":
		runList(store)
	default:
		usage()
	}
}

// runDeposit creates a fresh burner identity and a commitment binding the
// secret to the claim wallet. The printed hash and burner key are what the
// commit endpoint needs; everything sensitive stays in the store.
func runDeposit(store *walletstore.Store, aead cipher.AEAD, args []string) {
	fs := flag.NewFlagSet("deposit", flag.ExitOnError)
	id := fs.String("id", "", "label for this deposit")
	mint := fs.String("mint", "", "presale token mint")
	creator := fs.String("creator", "", "presale creator identity")
	claimWallet := fs.String("claim", "", "destination wallet for the claim")
	amount := fs.Uint64("amount", 0, "fund amount to commit")
	_ = fs.Parse(args)

	if *id == "" || *mint == "" || *creator == "" || *claimWallet == "" || *amount == 0 {
		fatalf("deposit requires -id, -mint, -creator, -claim and -amount")
	}

	burner, err := stealth.Generate()
	if err != nil {
		fatalf("generate burner identity: %v", err)
	}
	secret, err := commitment.NewSecret()
	if err != nil {
		fatalf("generate commitment secret: %v", err)
	}
	hash := commitment.Hash(secret, []byte(*claimWallet))

	err = store.AddDeposit(aead, walletstore.DepositRecord{
		ID:          *id,
		Mint:        *mint,
		Creator:     *creator,
		Participant: burner.PublicKey,
		ClaimWallet: *claimWallet,
		Hash:        hex.EncodeToString(hash[:]),
		Amount:      *amount,
		CreatedAt:   time.Now().Unix(),
	}, walletstore.DepositSecrets{
		BurnerSecretKey: burner.SecretKey,
		CommitSecret:    hex.EncodeToString(secret[:]),
	})
	if err != nil {
		fatalf("record deposit: %v", err)
	}
	if err := store.Save(); err != nil {
		fatalf("save store: %v", err)
	}

	fmt.Printf("burner:      %s\n", burner.PublicKey)
	fmt.Printf("hash:        %s\n", hex.EncodeToString(hash[:]))
	fmt.Printf("amount:      %d\n", *amount)
	fmt.Println("fund the burner, then submit the hash to the commit endpoint")
}

// runClaim prints the proof for the claim endpoint: the secret and the
// claim wallet that together reproduce the committed hash.
func runClaim(store *walletstore.Store, aead cipher.AEAD, args []string) {
	fs := flag.NewFlagSet("claim", flag.ExitOnError)
	id := fs.String("id", "", "deposit label")
	_ = fs.Parse(args)

	if *id == "" {
		fatalf("claim requires -id")
	}

	rec, secrets, err := store.OpenDeposit(aead, *id)
	if err != nil {
		fatalf("open deposit: %v", err)
	}

	fmt.Printf("mint:        %s\n", rec.Mint)
	fmt.Printf("creator:     %s\n", rec.Creator)
	fmt.Printf("secret:      %s\n", secrets.CommitSecret)
	fmt.Printf("destination: %s\n", rec.ClaimWallet)
}

// runImport records a stealth wallet handed back by the swap pipeline.
func runImport(store *walletstore.Store, aead cipher.AEAD, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	secretKey := fs.String("secret", "", "base58 stealth secret key")
	mint := fs.String("mint", "", "token the wallet holds")
	amount := fs.Uint64("amount", 0, "recorded proceeds")
	_ = fs.Parse(args)

	if *secretKey == "" {
		fatalf("import requires -secret")
	}

	identity, err := stealth.FromSecretKey(*secretKey)
	if err != nil {
		fatalf("invalid secret key: %v", err)
	}

	err = store.AddWallet(aead, walletstore.WalletRecord{
		PublicKey: identity.PublicKey,
		Mint:      *mint,
		Amount:    *amount,
		CreatedAt: time.Now().Unix(),
	}, walletstore.WalletSecrets{SecretKey: identity.SecretKey})
	if err != nil {
		fatalf("record wallet: %v", err)
	}
	if err := store.Save(); err != nil {
		fatalf("save store: %v", err)
	}

	fmt.Printf("imported %s\n", identity.PublicKey)
}

// runList prints the non-sensitive fields of every record.
func runList(store *walletstore.Store) {
	fmt.Println("Deposits:")
	for _, d := range store.Deposits {
		fmt.Printf("  %s  presale %s/%s  burner %s  amount %d\n", d.ID, d.Mint, d.Creator, d.Participant, d.Amount)
	}
	fmt.Println("Wallets:")
	for _, w := range store.Wallets {
		fmt.Printf("  %s  mint %s  amount %d\n", w.PublicKey, w.Mint, w.Amount)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
