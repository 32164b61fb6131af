package cmd

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cliprelay/publishbot/config"
	"github.com/cliprelay/publishbot/service"
	"github.com/cliprelay/publishbot/tiktok"
)

var (
	publishFile    string
	publishURL     string
	publishPhotos  []string
	publishTitle   string
	publishPrivacy string
	publishStrict  bool
)

func init() {
	publishCmd.Flags().StringVar(&publishFile, "file", "", "path to a local video file to upload")
	publishCmd.Flags().StringVar(&publishURL, "url", "", "public URL for TikTok to pull the video from")
	publishCmd.Flags().StringSliceVar(&publishPhotos, "photo", nil, "public photo URL (repeatable)")
	publishCmd.Flags().StringVar(&publishTitle, "title", "", "post title")
	publishCmd.Flags().StringVar(&publishPrivacy, "privacy", string(tiktok.PrivacySelfOnly), "privacy level for the post")
	publishCmd.Flags().BoolVar(&publishStrict, "strict", false, "fail on capability mismatch instead of coercing")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publishes a single post and waits for it to finish",
	Long:  `Publishes a single post and waits for it to finish`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)
		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		source, err := sourceFromFlags()
		if err != nil {
			log.Fatal(err)
		}
		privacy, err := tiktok.ParsePrivacyLevel(publishPrivacy)
		if err != nil {
			log.Fatal(err)
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

		ctx := context.Background()
		tiktokService := service.NewTikTokService(ctx, cfg, secretsManagerClient)
		client := tiktokService.Client()

		cred, err := tiktokService.Credential(ctx)
		if err != nil {
			log.Fatal(err)
		}

		info, err := client.QueryCreatorInfo(ctx, cred)
		if err != nil {
			log.Fatalf("creator info: %v", err)
		}
		log.WithField("creator", info.Username).WithField("privacyLevels", info.PrivacyLevels).Info("fetched creator capabilities")

		req := &tiktok.PostRequest{
			Title:        publishTitle,
			PrivacyLevel: privacy,
			Source:       source,
		}

		var session *tiktok.PublishSession
		if publishStrict {
			session, err = client.Publish(ctx, cred, req, info)
		} else {
			session, err = client.PublishCoercing(ctx, cred, req, info)
		}
		if err != nil {
			log.Fatalf("publish: %v", err)
		}
		log.WithField("publishID", session.PublishID).Info("publish session created")

		// Bound the wait so a stuck job doesn't hang the command forever
		waitCtx, cancel := context.WithTimeout(ctx, tiktokService.PollTimeout())
		defer cancel()
		status, err := client.WaitForPublish(waitCtx, cred, session.PublishID, tiktokService.PollInterval())
		if err != nil {
			log.Fatalf("waiting for publish: %v", err)
		}

		if status.State == tiktok.StateFailed {
			log.Fatalf("publish failed: %s", status.FailReason)
		}
		fmt.Printf("publish complete: %s\n", strings.Join(status.PostIDs, ", "))
	},
}

func sourceFromFlags() (tiktok.MediaSource, error) {
	switch {
	case publishFile != "" && publishURL == "" && len(publishPhotos) == 0:
		return tiktok.FileSource{Path: publishFile}, nil
	case publishURL != "" && publishFile == "" && len(publishPhotos) == 0:
		return tiktok.URLSource{URL: publishURL}, nil
	case len(publishPhotos) > 0 && publishFile == "" && publishURL == "":
		return tiktok.PhotoSource{URLs: publishPhotos}, nil
	default:
		return nil, fmt.Errorf("exactly one of --file, --url, or --photo must be given")
	}
}
