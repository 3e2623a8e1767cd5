package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/PlebOne/blogster/internal"
	"github.com/PlebOne/blogster/internal/mcpserver"
	"github.com/PlebOne/blogster/internal/models"
	"github.com/PlebOne/blogster/internal/nostr"
	"github.com/PlebOne/blogster/internal/relays"
)

func newCmd() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a new draft post",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read the post body from a Markdown file"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Hashtag to attach (repeatable)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			title := cmd.Args().First()
			if title == "" {
				return fmt.Errorf("a post title is required")
			}
			var content string
			if src := cmd.String("file"); src != "" {
				data, err := os.ReadFile(src)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", src, err)
				}
				content = string(data)
			}
			return withApp(cmd, func(app *internal.App) error {
				post, err := app.Service.CreatePost(ctx, title, content, cmd.StringSlice("tag"))
				if err != nil {
					return err
				}
				fmt.Printf("created %s (%s)\n", post.FilePath, post.ID)
				return nil
			})
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List indexed posts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "Filter by status (draft, published, failed)"},
			&cli.StringFlag{Name: "tag", Usage: "Filter by hashtag"},
			&cli.IntFlag{Name: "limit", Value: 50, Usage: "Maximum rows to print"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(cmd, func(app *internal.App) error {
				rows, total, err := app.Service.ListPosts(ctx,
					int(cmd.Int("limit")), 0, cmd.String("status"), cmd.String("tag"), "")
				if err != nil {
					return err
				}
				for _, r := range rows {
					fmt.Printf("%-10s  %-40s  %s\n", r.Status, truncate(r.Title, 40), r.Path)
				}
				fmt.Printf("%d of %d posts\n", len(rows), total)
				return nil
			})
		},
	}
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search across titles and bodies",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum results"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := cmd.Args().First()
			if query == "" {
				return fmt.Errorf("a search query is required")
			}
			return withApp(cmd, func(app *internal.App) error {
				results, err := app.Service.SearchPosts(ctx, query, int(cmd.Int("limit")))
				if err != nil {
					return err
				}
				for _, r := range results {
					fmt.Printf("%-40s  %s\n", truncate(r.Title, 40), r.Path)
					if r.Snippet != "" {
						fmt.Printf("    %s\n", r.Snippet)
					}
				}
				return nil
			})
		},
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a post with its frontmatter",
		ArgsUsage: "<path|id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(cmd, func(app *internal.App) error {
				path, err := app.Service.ResolvePath(cmd.Args().First())
				if err != nil {
					return err
				}
				post, err := app.Service.GetPost(ctx, path)
				if err != nil {
					return err
				}
				fmt.Printf("title:    %s\n", post.Title)
				fmt.Printf("id:       %s\n", post.ID)
				fmt.Printf("status:   %s\n", post.Status)
				if len(post.Tags) > 0 {
					fmt.Printf("tags:     %s\n", strings.Join(post.Tags, ", "))
				}
				if post.NostrEventID != "" {
					fmt.Printf("event:    %s\n", post.NostrEventID)
					fmt.Printf("relays:   %s\n", strings.Join(post.PublishedRelays, ", "))
				}
				fmt.Printf("words:    %d (~%d min)\n\n", post.WordCount(), post.ReadingTime())
				fmt.Println(post.Content)
				return nil
			})
		},
	}
}

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:      "publish",
		Usage:     "Sign the post and submit it to the active relays",
		ArgsUsage: "<path|id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(cmd, func(app *internal.App) error {
				path, err := app.Service.ResolvePath(cmd.Args().First())
				if err != nil {
					return err
				}
				post, err := app.Service.PublishPost(ctx, path, app.Relays)
				if err != nil {
					return err
				}
				fmt.Printf("published %s\n", post.NostrEventID)
				for _, url := range post.PublishedRelays {
					fmt.Printf("  accepted by %s\n", url)
				}
				return nil
			})
		},
	}
}

func uploadCmd() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload an image to the Blossom server and set it as the post's featured image",
		ArgsUsage: "<path|id> <image-file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("expected a post and an image file")
			}
			return withApp(cmd, func(app *internal.App) error {
				path, err := app.Service.ResolvePath(cmd.Args().Get(0))
				if err != nil {
					return err
				}
				url, err := app.Service.UploadImage(ctx, path, cmd.Args().Get(1))
				if err != nil {
					return err
				}
				fmt.Println(url)
				return nil
			})
		},
	}
}

func importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Copy an external Markdown file into the posts directory",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(cmd, func(app *internal.App) error {
				post, err := app.Service.ImportPost(ctx, cmd.Args().First())
				if err != nil {
					return err
				}
				fmt.Printf("imported %s (%s)\n", post.FilePath, post.ID)
				return nil
			})
		},
	}
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a post, frontmatter included, to an external file",
		ArgsUsage: "<path|id> <destination>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("expected a post and a destination path")
			}
			return withApp(cmd, func(app *internal.App) error {
				path, err := app.Service.ResolvePath(cmd.Args().Get(0))
				if err != nil {
					return err
				}
				return app.Service.ExportPost(ctx, path, cmd.Args().Get(1))
			})
		},
	}
}

func deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a post file and its index entry",
		ArgsUsage: "<path|id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(cmd, func(app *internal.App) error {
				path, err := app.Service.ResolvePath(cmd.Args().First())
				if err != nil {
					return err
				}
				return app.Service.DeletePost(ctx, path)
			})
		},
	}
}

func keysCmd() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "Manage the Nostr signing key",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a fresh keypair and store it encrypted",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						creds, err := nostr.GenerateCredentials()
						if err != nil {
							return err
						}
						if err := app.Keystore.Save(creds); err != nil {
							return err
						}
						fmt.Printf("public key: %s\n", creds.PublicKey)
						return nil
					})
				},
			},
			{
				Name:      "import",
				Usage:     "Import an existing private key (nsec or hex)",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						creds, err := nostr.ImportCredentials(cmd.Args().First())
						if err != nil {
							return err
						}
						if err := app.Keystore.Save(creds); err != nil {
							return err
						}
						fmt.Printf("public key: %s\n", creds.PublicKey)
						return nil
					})
				},
			},
			{
				Name:  "show",
				Usage: "Print the stored public key",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						creds, err := app.Keystore.Load()
						if err != nil {
							return err
						}
						if creds == nil {
							fmt.Println("no key stored")
							return nil
						}
						fmt.Printf("public key: %s\n", creds.PublicKey)
						if creds.DisplayName != "" {
							fmt.Printf("name:       %s\n", creds.DisplayName)
						}
						return nil
					})
				},
			},
			{
				Name:  "delete",
				Usage: "Delete the stored key",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						return app.Keystore.Delete()
					})
				},
			},
		},
	}
}

func relayCmd() *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "Manage the relay list",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print the active relays",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						for _, url := range app.Relays.ActiveRelays() {
							fmt.Println(url)
						}
						return nil
					})
				},
			},
			{
				Name:      "add",
				Usage:     "Add a custom relay",
				ArgsUsage: "<url>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						if err := app.Relays.AddRelay(cmd.Args().First()); err != nil {
							return err
						}
						return relays.SaveSettings(app.Config.Relays.SettingsPath, app.Relays)
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a custom relay",
				ArgsUsage: "<url>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						app.Relays.RemoveRelay(cmd.Args().First())
						return relays.SaveSettings(app.Config.Relays.SettingsPath, app.Relays)
					})
				},
			},
		},
	}
}

func profileCmd() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage and publish the Nostr profile",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Update stored profile fields",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "about", Usage: "Short bio"},
					&cli.StringFlag{Name: "picture", Usage: "Avatar URL"},
					&cli.StringFlag{Name: "nip05", Usage: "NIP-05 identifier"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						creds, err := app.Keystore.Load()
						if err != nil {
							return err
						}
						if creds == nil {
							return fmt.Errorf("no key stored, run `blogster keys generate` first")
						}
						applyProfileFlags(cmd, creds)
						return app.Keystore.Save(creds)
					})
				},
			},
			{
				Name:  "publish",
				Usage: "Publish the profile as a kind-0 metadata event",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(cmd, func(app *internal.App) error {
						eventID, err := app.Service.UpdateProfile(ctx, app.Relays)
						if err != nil {
							return err
						}
						fmt.Printf("published %s\n", eventID)
						return nil
					})
				},
			},
		},
	}
}

func applyProfileFlags(cmd *cli.Command, creds *models.Credentials) {
	if v := cmd.String("name"); v != "" {
		creds.DisplayName = v
	}
	if v := cmd.String("about"); v != "" {
		creds.About = v
	}
	if v := cmd.String("picture"); v != "" {
		creds.Picture = v
	}
	if v := cmd.String("nip05"); v != "" {
		creds.NIP05 = v
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP stdio server exposing posts to agent tooling",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(cmd, func(app *internal.App) error {
				srv := mcpserver.New(app.Service, app.Relays)
				return srv.ServeStdio()
			})
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
