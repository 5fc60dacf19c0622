package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mjhaynes/imagevault/vault/application"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetConfigName("imagevault")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/imagevault")
	v.SetEnvPrefix("imagevault")
	v.AutomaticEnv()

	v.SetDefault("directory", "")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Msg("Failed to read config file")
		}
	}

	return v
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := loadConfig()

	level, err := zerolog.ParseLevel(cfg.GetString("log_level"))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	stdin := bufio.NewScanner(os.Stdin)

	dir := cfg.GetString("directory")
	if dir == "" {
		dir = prompt(stdin, "Repository directory: ")
	}

	session, err := application.Open(dir)
	if err != nil {
		log.Fatal().Err(err).Str("directory", dir).Msg("Failed to open repository")
	}

	fmt.Println("Commands: login, logout, list, upload, remove, export, quit")
	for {
		who := "(not logged in)"
		if user, ok := session.CurrentUser(); ok {
			who = user
		}
		line := prompt(stdin, who+"> ")

		switch line {
		case "login":
			username := prompt(stdin, "Username: ")
			password := prompt(stdin, "Password: ")
			ok, err := session.LoginOrRegister(username, password)
			if err != nil {
				fmt.Println("Login failed:", err)
			} else if !ok {
				fmt.Println("Wrong password.")
			}
		case "logout":
			session.Logout()
		case "list":
			for _, name := range session.List() {
				fmt.Println(" ", name, describeEntry(session, name))
			}
		case "upload":
			source := prompt(stdin, "Path of image to upload: ")
			public := prompt(stdin, "Public? (y/n): ") == "y"
			stored, err := session.Upload(source, public)
			if err != nil {
				fmt.Println("Upload failed:", err)
			} else {
				fmt.Println("Stored as", stored)
			}
		case "remove":
			name := prompt(stdin, "Image to remove: ")
			removed, err := session.Remove(name)
			if err != nil {
				fmt.Println("Remove failed:", err)
			} else if !removed {
				fmt.Println("You may only remove images you own.")
			}
		case "export":
			name := prompt(stdin, "Image to export: ")
			dest := prompt(stdin, "Destination path: ")
			if err := session.Export(name, dest); err != nil {
				fmt.Println("Export failed:", err)
			}
		case "quit", "exit", "":
			return
		default:
			fmt.Println("Unknown command:", line)
		}
	}
}

func describeEntry(session *application.Session, name string) string {
	entry, ok := session.Images().Entry(name)
	if !ok {
		return ""
	}
	owner, owned := entry.Owner()
	switch {
	case !owned:
		return "[anonymous]"
	case entry.IsPublic():
		return "[" + owner + ", public]"
	default:
		return "[" + owner + ", private]"
	}
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(stdin.Text())
}
