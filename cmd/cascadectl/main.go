package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xyfir/cascade"
)

func main() {
	// ---- init ----
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	initKeyfile := initCmd.String("keyfile", "./cascade.json", "path to keyfile")
	initLayers := initCmd.String("layers", "aes-256-gcm", "comma-separated layer list")
	initHash := initCmd.String("hash", "argon2id", "password hash: argon2id or pbkdf2-sha256")
	initPreset := initCmd.String("preset", "moderate", "cost preset: interactive, moderate, sensitive")

	// ---- seal ----
	sealCmd := flag.NewFlagSet("seal", flag.ExitOnError)
	sealKeyfile := sealCmd.String("keyfile", "./cascade.json", "path to keyfile")
	sealIn := sealCmd.String("in", "", "plaintext input file")
	sealOut := sealCmd.String("out", "", "sealed output file (default: <in>.sealed)")

	// ---- open ----
	openCmd := flag.NewFlagSet("open", flag.ExitOnError)
	openKeyfile := openCmd.String("keyfile", "./cascade.json", "path to keyfile")
	openIn := openCmd.String("in", "", "sealed input file")
	openOut := openCmd.String("out", "", "plaintext output file (default: stdout)")

	// ---- passwd ----
	passwdCmd := flag.NewFlagSet("passwd", flag.ExitOnError)
	passwdKeyfile := passwdCmd.String("keyfile", "./cascade.json", "path to keyfile")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		err = runInit(*initKeyfile, *initLayers, *initHash, *initPreset)
	case "seal":
		sealCmd.Parse(os.Args[2:])
		err = runSeal(*sealKeyfile, *sealIn, *sealOut)
	case "open":
		openCmd.Parse(os.Args[2:])
		err = runOpen(*openKeyfile, *openIn, *openOut)
	case "passwd":
		passwdCmd.Parse(os.Args[2:])
		err = runPasswd(*passwdKeyfile)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "cascadectl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cascadectl <init|seal|open|passwd> [flags]")
}

func runInit(keyfilePath, layerList, hashName, preset string) error {
	if _, err := os.Stat(keyfilePath); err == nil {
		return fmt.Errorf("keyfile %s already exists", keyfilePath)
	}

	var layers []cascade.Algorithm
	for _, name := range strings.Split(layerList, ",") {
		alg, err := cascade.ParseAlgorithm(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		layers = append(layers, alg)
	}
	c, err := cascade.New(cascade.Config{Layers: layers})
	if err != nil {
		return err
	}
	cost, err := costFor(hashName, preset)
	if err != nil {
		return err
	}

	password, err := readPassword("New password: ")
	if err != nil {
		return err
	}
	defer cascade.Zero(password)
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	defer cascade.Zero(confirm)
	if string(password) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	pk, err := c.DerivePasswordKey(cascade.PasswordKeyParams{Password: password, Cost: cost})
	if err != nil {
		return err
	}
	defer pk.Wipe()
	mk, wrap, err := c.GenerateMasterKey(pk)
	if err != nil {
		return err
	}
	defer mk.Wipe()

	if err := writeKeyfile(keyfilePath, newKeyfile(layers, pk, wrap)); err != nil {
		return err
	}
	fmt.Println("initialized", keyfilePath)
	return nil
}

func runSeal(keyfilePath, in, out string) error {
	if in == "" {
		return fmt.Errorf("-in is required")
	}
	if out == "" {
		out = in + ".sealed"
	}
	c, mk, err := unlock(keyfilePath)
	if err != nil {
		return err
	}
	defer mk.Wipe()

	plaintext, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	ed, err := c.Encrypt(plaintext, mk)
	if err != nil {
		return err
	}
	if err := writeItem(out, &itemFile{WrappedKey: ed.WrappedContentKey, Ciphertext: ed.Ciphertext}); err != nil {
		return err
	}
	fmt.Println("sealed", out)
	return nil
}

func runOpen(keyfilePath, in, out string) error {
	if in == "" {
		return fmt.Errorf("-in is required")
	}
	c, mk, err := unlock(keyfilePath)
	if err != nil {
		return err
	}
	defer mk.Wipe()

	it, err := readItem(in)
	if err != nil {
		return err
	}
	plaintext, err := c.Decrypt(cascade.EncryptedData{
		WrappedContentKey: it.WrappedKey,
		Ciphertext:        it.Ciphertext,
	}, mk)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(plaintext)
		return err
	}
	return os.WriteFile(out, plaintext, 0o600)
}

func runPasswd(keyfilePath string) error {
	kf, err := readKeyfile(keyfilePath)
	if err != nil {
		return err
	}
	cfg, err := kf.config()
	if err != nil {
		return err
	}
	c, err := cascade.New(cfg)
	if err != nil {
		return err
	}
	cost, err := kf.cost()
	if err != nil {
		return err
	}

	oldPassword, err := readPassword("Current password: ")
	if err != nil {
		return err
	}
	defer cascade.Zero(oldPassword)
	pkOld, err := c.DerivePasswordKey(cascade.PasswordKeyParams{Password: oldPassword, Salt: kf.Salt, Cost: cost})
	if err != nil {
		return err
	}
	defer pkOld.Wipe()

	newPassword, err := readPassword("New password: ")
	if err != nil {
		return err
	}
	defer cascade.Zero(newPassword)
	pkNew, err := c.DerivePasswordKey(cascade.PasswordKeyParams{Password: newPassword, Cost: cost})
	if err != nil {
		return err
	}
	defer pkNew.Wipe()

	wrap, err := c.ChangePassword(kf.MasterWrap, pkOld, pkNew)
	if err != nil {
		return err
	}
	kf.Salt = pkNew.Salt
	kf.MasterWrap = wrap
	if err := writeKeyfile(keyfilePath, kf); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

// unlock loads the keyfile, prompts for the password, and unwraps the
// master key.
func unlock(keyfilePath string) (*cascade.Cascade, *cascade.MasterKey, error) {
	kf, err := readKeyfile(keyfilePath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := kf.config()
	if err != nil {
		return nil, nil, err
	}
	c, err := cascade.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cost, err := kf.cost()
	if err != nil {
		return nil, nil, err
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return nil, nil, err
	}
	defer cascade.Zero(password)

	pk, err := c.DerivePasswordKey(cascade.PasswordKeyParams{Password: password, Salt: kf.Salt, Cost: cost})
	if err != nil {
		return nil, nil, err
	}
	defer pk.Wipe()

	mk, err := c.UnlockMasterKey(kf.MasterWrap, pk)
	if err != nil {
		return nil, nil, err
	}
	return c, mk, nil
}

func costFor(hashName, preset string) (cascade.CostParams, error) {
	hash, err := cascade.ParsePasswordHash(hashName)
	if err != nil {
		return cascade.CostParams{}, err
	}
	presets := map[string]map[cascade.PasswordHash]cascade.CostParams{
		"interactive": {cascade.Argon2id: cascade.Argon2idInteractive, cascade.PBKDF2SHA256: cascade.PBKDF2Interactive},
		"moderate":    {cascade.Argon2id: cascade.Argon2idModerate, cascade.PBKDF2SHA256: cascade.PBKDF2Moderate},
		"sensitive":   {cascade.Argon2id: cascade.Argon2idSensitive, cascade.PBKDF2SHA256: cascade.PBKDF2Sensitive},
	}
	byHash, ok := presets[preset]
	if !ok {
		return cascade.CostParams{}, fmt.Errorf("unknown preset %q", preset)
	}
	return byHash[hash], nil
}

// readPassword prompts without echo on a terminal and falls back to a
// plain line read when stdin is a pipe.
func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return password, err
	}
	r := bufio.NewReader(os.Stdin)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
