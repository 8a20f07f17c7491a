// Package main implements the Lambda handler that links freshly
// captured ideas into their profile's graph. It consumes idea.captured
// events from EventBridge and runs one autolink pass per anchor.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"ideaweaver/application/commands"
	commandbus "ideaweaver/application/commands/bus"
	"ideaweaver/infrastructure/config"
	"ideaweaver/infrastructure/di"
)

var commandBus *commandbus.CommandBus

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	commandBus = container.CommandBus

	log.Println("Autolink handler initialized")
}

// LinkRequest is the direct-invocation payload
type LinkRequest struct {
	ProfileID string `json:"profile_id"`
	NodeID    string `json:"node_id"`
	Preset    string `json:"preset,omitempty"`
}

// ideaCapturedDetail is the slice of the idea.captured event this
// handler needs
type ideaCapturedDetail struct {
	ProfileID string `json:"profile_id"`
	NodeID    string `json:"node_id"`
}

func runLinkPass(ctx context.Context, request LinkRequest) error {
	cmd := commands.AutolinkIdeaCommand{
		ProfileID: request.ProfileID,
		NodeID:    request.NodeID,
		Preset:    request.Preset,
	}
	if err := commandBus.Send(ctx, cmd); err != nil {
		return fmt.Errorf("autolink pass for node %s failed: %w", request.NodeID, err)
	}
	return nil
}

func handler(ctx context.Context, event json.RawMessage) error {
	// EventBridge invocation
	var busEvent awsevents.CloudWatchEvent
	if err := json.Unmarshal(event, &busEvent); err == nil && busEvent.DetailType != "" {
		if busEvent.DetailType != "idea.captured" {
			log.Printf("Ignoring event type %s", busEvent.DetailType)
			return nil
		}

		var detail ideaCapturedDetail
		if err := json.Unmarshal(busEvent.Detail, &detail); err != nil {
			return fmt.Errorf("failed to parse idea.captured event: %w", err)
		}

		return runLinkPass(ctx, LinkRequest{
			ProfileID: detail.ProfileID,
			NodeID:    detail.NodeID,
		})
	}

	// Direct invocation
	var request LinkRequest
	if err := json.Unmarshal(event, &request); err == nil && request.NodeID != "" {
		return runLinkPass(ctx, request)
	}

	return fmt.Errorf("unable to parse event")
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}

	// Local testing mode: read a LinkRequest from argv
	if len(os.Args) < 3 {
		log.Fatal("usage: autolink <profile-id> <node-id>")
	}
	request := LinkRequest{ProfileID: os.Args[1], NodeID: os.Args[2]}
	if err := runLinkPass(context.Background(), request); err != nil {
		log.Fatalf("Link pass failed: %v", err)
	}
	log.Println("Link pass completed")
}
