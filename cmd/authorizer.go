package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cliprelay/publishbot/config"
	"github.com/cliprelay/publishbot/tiktok"
)

func init() {
	rootCmd.AddCommand(authorizerCmd)
}

var authorizerCmd = &cobra.Command{
	Use:   "authorizer",
	Short: "Walks through TikTok authorization and prints a refresh token",
	Long:  `Walks through TikTok authorization and prints a refresh token`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)
		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Panic(err)
		}
		secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

		// Get the TikTok secrets from AWS Secrets Manager
		result, err := secretsManagerClient.GetSecretValue(context.Background(), &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.TikTok.SecretPath)})
		if err != nil {
			log.Panic(err.Error())
		}
		var tiktokSecrets config.TikTokSecretData
		err = json.Unmarshal([]byte(*result.SecretString), &tiktokSecrets)
		if err != nil {
			log.Panicf("tiktok secrets read error: %v", err)
		}

		// The state value only matters when a real redirect handler checks
		// it; for the copy-paste flow it just has to be present.
		state := cuid.New()
		authURL := tiktok.AuthorizationURL(tiktokSecrets.ClientKey, cfg.TikTok.RedirectURI, state, cfg.TikTok.Scopes)
		fmt.Printf("Open this URL in your browser:\n%s\n", authURL)

		fmt.Printf("Paste the code from the redirect URL here: ")
		var code string
		if _, err := fmt.Scanf("%s", &code); err != nil {
			log.Fatalf("Code entry: %s", err.Error())
		}

		client := tiktok.NewClient(cfg.TikTok.ApiURL)
		cred, err := client.ExchangeCode(context.Background(), tiktokSecrets.ClientKey, tiktokSecrets.ClientSecret, code, cfg.TikTok.RedirectURI)
		if err != nil {
			log.Fatalf("Token Exchange Phase: %s", err.Error())
		}

		fmt.Println("App was granted a token to publish on behalf of the user.")
		fmt.Printf("open id: %s\nscope: %s\nrefresh token: %s\n", cred.OpenID, cred.Scope, cred.RefreshToken)
		fmt.Println("Store the refresh token in the TikTok secret so the server can mint access tokens.")
	},
}
