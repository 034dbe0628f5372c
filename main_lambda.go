//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"deck-recommender/internal/format"
	"deck-recommender/internal/request"
	"deck-recommender/internal/utils"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
	"deck-recommender/pkg/storage"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// recommendRequest is a recommend body plus the player's user data.
type recommendRequest struct {
	request.Request
	User json.RawMessage `json:"user"`
}

type recommendResult struct {
	*storage.Run
	Detail string `json:"detail"`
}

var (
	tablesOnce sync.Once
	tables     *masterdata.Tables
	tablesErr  error
)

// loadTables reads master data once per container from DECKREC_DATA_MASTER
// and DECKREC_DATA_MUSIC.
func loadTables(ctx context.Context) (*masterdata.Tables, error) {
	tablesOnce.Do(func() {
		tables, tablesErr = masterdata.LoadTables(ctx, masterdata.Sources{
			Master: os.Getenv("DECKREC_DATA_MASTER"),
			Music:  os.Getenv("DECKREC_DATA_MUSIC"),
		})
	})
	return tables, tablesErr
}

func statusOf(err error) int {
	switch errs.Kind(err) {
	case "config":
		return 400
	case "data":
		return 422
	case "exhausted":
		return 404
	}
	return 500
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req recommendRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if len(req.User) == 0 {
		return errResp(400, "missing user field")
	}

	t, err := loadTables(ctx)
	if err != nil {
		utils.Log.WithError(err).Error("failed to load master data")
		return errResp(500, "master data unavailable")
	}
	user, err := masterdata.ParseUser(string(req.User))
	if err != nil {
		return errResp(400, err.Error())
	}

	run, err := request.Execute(ctx, t, user, &req.Request)
	if err != nil {
		return errResp(statusOf(err), err.Error())
	}
	run.ID = uuid.NewString()

	obj, _ := enums.ParseObjective(req.Objective)
	resp := recommendResult{Run: run, Detail: format.FormatResult(run.Decks, obj)}
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
