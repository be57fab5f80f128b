package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"wanderly/models"
)

const replHelp = `Type a message to talk to the agent.
  pay           settle the pending payment (only while the agent waits for it)
  fail [reason] report the pending payment as failed
  /state        print the conversation step and requirements
  /reset        forget this conversation
  /quit         leave`

// repl runs an interactive conversation on one thread.
type repl struct {
	api      *apiClient
	threadID string
	out      io.Writer

	// last is the previous turn; it tells us whether the agent is waiting for payment.
	last *models.ChatResponse
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(r.out, "thread %s\n%s\n", r.threadID, replHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := r.handle(ctx, line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	switch {
	case line == "/quit" || line == "/exit":
		return true, nil
	case line == "/state":
		st, err := r.api.State(ctx, r.threadID)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "step: %s\nrequirements: %+v\n", st.Step, st.Requirements)
		return false, nil
	case line == "/reset":
		if err := r.api.Reset(ctx, r.threadID); err != nil {
			return false, err
		}
		r.last = nil
		fmt.Fprintln(r.out, "conversation reset")
		return false, nil
	case r.waitingForPayment() && line == "pay":
		return false, r.settle(ctx, models.PaymentSucceeded, "")
	case r.waitingForPayment() && (line == "fail" || strings.HasPrefix(line, "fail ")):
		return false, r.settle(ctx, models.PaymentFailed, strings.TrimSpace(strings.TrimPrefix(line, "fail")))
	}

	resp, err := r.api.Chat(ctx, r.threadID, line)
	if err != nil {
		return false, err
	}
	r.show(resp)
	return false, nil
}

func (r *repl) waitingForPayment() bool {
	return r.last != nil && r.last.Interrupted
}

func (r *repl) settle(ctx context.Context, status, reason string) error {
	req := models.PaymentCallbackRequest{ThreadID: r.threadID, Status: status, Reason: reason}
	if r.last.Booking != nil {
		req.PaymentID = r.last.Booking.PaymentID
	}
	resp, err := r.api.Pay(ctx, req)
	if err != nil {
		return err
	}
	r.show(resp)
	return nil
}

func (r *repl) show(resp *models.ChatResponse) {
	r.last = resp
	for _, m := range resp.Replies {
		fmt.Fprintf(r.out, "agent: %s\n", m.Content)
	}
	if resp.Interrupted && resp.Booking != nil {
		fmt.Fprintf(r.out, "[awaiting payment %s: %.2f %s, type pay or fail]\n",
			resp.Booking.PaymentID, resp.Booking.Amount, resp.Booking.Currency)
	}
}
