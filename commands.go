// notebook/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vinizap/lumi/notebook/codec"
	"github.com/vinizap/lumi/notebook/crypt"
	"github.com/vinizap/lumi/notebook/domain"
	"github.com/vinizap/lumi/notebook/filesystem"
	httphandlers "github.com/vinizap/lumi/notebook/http"
	"github.com/vinizap/lumi/notebook/index"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Show a notebook's header and, when readable, its contents summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			h, err := codec.ReadHeader(data)
			if err != nil {
				return err
			}

			fmt.Printf("File:        %s (%d bytes)\n", args[0], len(data))
			fmt.Printf("Version:     %s\n", h.Version)
			fmt.Printf("Compression: %d\n", h.CompressionLevel)
			fmt.Printf("Cipher:      %s\n", cipherName(h.CipherID))
			if h.Encrypted() {
				fmt.Printf("Hash:        %d\n", h.HashID)
				fmt.Printf("Secure hash: %d\n", h.SecureHashID)
				if password == "" {
					fmt.Printf("Data:        %d bytes (encrypted)\n", len(h.Data))
					return nil
				}
			}

			doc, err := newCodec().Decode(data)
			if err != nil {
				return err
			}
			fmt.Printf("Created:     %s\n", doc.CreatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Printf("Modified:    %s\n", doc.ModifiedAt.Local().Format("2006-01-02 15:04"))
			fmt.Printf("Notes:       %d\n", len(doc.Notes()))
			fmt.Printf("Folders:     %d\n", len(doc.Folders()))
			fmt.Printf("Tags:        %d\n", len(doc.Tags()))
			fmt.Printf("Icons:       %d custom\n", len(doc.Icons()))
			return nil
		},
	}
}

func cipherName(id uint8) string {
	switch id {
	case crypt.CipherNone:
		return "none"
	case crypt.CipherAES128CBC:
		return "aes-128-cbc"
	default:
		return fmt.Sprintf("unknown (%d)", id)
	}
}

func treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [file]",
		Short: "Print the folder tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := newCodec().Open(args[0])
			if err != nil {
				return err
			}
			for _, f := range doc.SystemFolders() {
				fmt.Println(f.Name)
				domain.Walk(f, func(item domain.Item, depth int) bool {
					indent := strings.Repeat("  ", depth+1)
					switch it := item.(type) {
					case *domain.Folder:
						fmt.Printf("%s%s/\n", indent, it.Name)
					case *domain.Note:
						var tags []string
						for _, t := range it.Tags() {
							tags = append(tags, t.Name)
						}
						if len(tags) > 0 {
							fmt.Printf("%s%s  [%s]\n", indent, it.Title, strings.Join(tags, ", "))
						} else {
							fmt.Printf("%s%s\n", indent, it.Title)
						}
					}
					return true
				})
			}
			return nil
		},
	}
}

// saveSettings holds the flags shared by commands that write notebooks.
type saveSettings struct {
	compression int
	cipher      uint8
	hash        uint8
	secureHash  uint8
	newPassword string
}

func (s *saveSettings) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.compression, "compression", 0, "compression level 0-9 (default from config)")
	cmd.Flags().Uint8Var(&s.cipher, "cipher", 0, "cipher id, 0 for none (default from config)")
	cmd.Flags().Uint8Var(&s.hash, "hash", 0, "key derivation id")
	cmd.Flags().Uint8Var(&s.secureHash, "secure-hash", 0, "password check id")
	cmd.Flags().StringVar(&s.newPassword, "new-password", "", "password for the written file")
}

// apply copies flags onto doc. Settings the user did not pass keep the
// document's values, or the config defaults when fresh is set.
func (s *saveSettings) apply(cmd *cobra.Command, doc *domain.Document, fresh bool) error {
	flags := cmd.Flags()
	if fresh {
		doc.CompressionLevel = cfg.Compression
		doc.CipherID = cfg.Cipher
		doc.HashID = cfg.Hash
		doc.SecureHashID = cfg.SecureHash
	}
	if flags.Changed("compression") {
		doc.CompressionLevel = s.compression
	}
	if flags.Changed("cipher") {
		doc.CipherID = s.cipher
	}
	if flags.Changed("hash") {
		doc.HashID = s.hash
	}
	if flags.Changed("secure-hash") {
		doc.SecureHashID = s.secureHash
	}

	switch {
	case s.newPassword != "":
		doc.Password = []byte(s.newPassword)
	case len(doc.Password) == 0 && password != "":
		doc.Password = []byte(password)
	}
	if doc.CipherID != crypt.CipherNone && len(doc.Password) == 0 {
		return errors.New("an encrypted notebook needs --new-password or --password")
	}
	return nil
}

func importCmd() *cobra.Command {
	var settings saveSettings
	cmd := &cobra.Command{
		Use:   "import [dir] [file]",
		Short: "Build a notebook from a directory of markdown files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := filesystem.ImportDir(args[0])
			if err != nil {
				return err
			}
			if err := settings.apply(cmd, doc, true); err != nil {
				return err
			}
			if err := newCodec().Save(doc, args[1], codec.CurrentVersion); err != nil {
				return err
			}
			fmt.Printf("Imported %d notes in %d folders into %s\n", len(doc.Notes()), len(doc.Folders()), args[1])
			return nil
		},
	}
	settings.register(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file] [dir]",
		Short: "Write a notebook out as markdown files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := newCodec().Open(args[0])
			if err != nil {
				return err
			}
			if err := filesystem.ExportDir(doc, args[1]); err != nil {
				return err
			}
			fmt.Printf("Exported %d notes to %s\n", len(doc.Notes()), args[1])
			return nil
		},
	}
}

func convertCmd() *cobra.Command {
	var settings saveSettings
	cmd := &cobra.Command{
		Use:   "convert [in] [out]",
		Short: "Rewrite a notebook with other compression or encryption settings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newCodec()
			doc, err := c.Open(args[0])
			if err != nil {
				return err
			}
			if err := settings.apply(cmd, doc, false); err != nil {
				return err
			}
			if err := c.Save(doc, args[1], codec.CurrentVersion); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (compression %d, cipher %s)\n", args[1], doc.CompressionLevel, cipherName(doc.CipherID))
			return nil
		},
	}
	settings.register(cmd)
	return cmd
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [file] [db]",
		Short: "Export a notebook into a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := newCodec().Open(args[0])
			if err != nil {
				return err
			}
			if err := index.Export(doc, args[1]); err != nil {
				return err
			}
			fmt.Printf("Indexed %d notes into %s\n", len(doc.Notes()), args[1])
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a notebook over a read-only HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := newCodec().Open(args[0])
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Port
			}

			server := httphandlers.NewServer(doc, log)
			app := httphandlers.NewApp(server, cfg.Token)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				app.Shutdown()
			}()

			log.Info().Str("port", port).Str("file", args[0]).Msg("server starting")
			return app.Listen(":" + port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from config)")
	return cmd
}
