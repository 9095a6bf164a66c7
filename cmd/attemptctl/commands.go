package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/logging"
	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/redis/bus"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/grading"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging/defs"
)

var harnessCmd = &cobra.Command{
	Use:   "harness <exercise.yaml>",
	Short: "Print the program the sandbox would run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHarness,
}

var gradeCmd = &cobra.Command{
	Use:   "grade <exercise.yaml>",
	Short: "Grade an exercise without storing an attempt",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrade,
}

var getCmd = &cobra.Command{
	Use:   "get <attempt-id>",
	Short: "Show a stored attempt",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runHarness(cmd *cobra.Command, args []string) error {
	ex, err := loadExercise(args[0])
	if err != nil {
		return err
	}
	program, err := grading.BuildHarness(ex.Code, ex.Language, ex.FunctionName, ex.TestCases)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), program)
	return nil
}

func runGrade(cmd *cobra.Command, args []string) error {
	ex, err := loadExercise(args[0])
	if err != nil {
		return err
	}
	return request(cmd, defs.SubjectGradeEphemeral, ex.gradeRequest())
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid attempt id %q", args[0])
	}
	return request(cmd, defs.SubjectGetAttempt, map[string]int64{"id": id})
}

// request sends body on subject and pretty prints the reply
func request(cmd *cobra.Command, subject string, body interface{}) error {
	client := redis.NewClient(&redis.Options{
		Addr:     settings.GetString("redis-addr"),
		Password: settings.GetString("redis-password"),
		DB:       settings.GetInt("redis-db"),
	})
	defer client.Close()

	b := bus.NewBus(client, logging.NewNopLogger())
	defer b.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), settings.GetDuration("timeout"))
	defer cancel()

	var reply json.RawMessage
	if err := b.Request(ctx, subject, body, &reply); err != nil {
		return fmt.Errorf("%s: %w", subject, err)
	}

	var errReply defs.ErrorReply
	if json.Unmarshal(reply, &errReply) == nil && errReply.Error != "" {
		return fmt.Errorf("%s: %s", subject, errReply.Error)
	}

	var pretty interface{}
	if err := json.Unmarshal(reply, &pretty); err != nil {
		return fmt.Errorf("decoding reply: %w", err)
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
