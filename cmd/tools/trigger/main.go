package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

func main() {
	base := flag.String("url", "http://localhost:8081", "Server base URL")
	wait := flag.Bool("wait", true, "Poll the job until it finishes")
	flag.Parse()

	adminSecret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
	if adminSecret == "" {
		fmt.Println("Missing ADMIN_SECRET environment variable")
		os.Exit(1)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	var started struct {
		JobID string `json:"job_id"`
		Error string `json:"error"`
	}
	status, err := call(client, http.MethodPost, *base+"/api/v1/admin/refresh", adminSecret, &started)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Response Status: %d job=%s\n", status, started.JobID)
	if status != http.StatusAccepted && status != http.StatusConflict {
		fmt.Println(started.Error)
		os.Exit(1)
	}
	if !*wait || started.JobID == "" {
		return
	}

	for {
		time.Sleep(time.Second)
		var job struct {
			Status   string `json:"status"`
			Duration string `json:"duration"`
			Error    string `json:"error"`
		}
		if _, err := call(client, http.MethodGet, *base+"/api/v1/admin/job/"+started.JobID, adminSecret, &job); err != nil {
			fmt.Printf("Error polling job: %v\n", err)
			os.Exit(1)
		}
		if job.Status == "running" {
			continue
		}
		fmt.Printf("Job %s: %s in %s %s\n", started.JobID, job.Status, job.Duration, job.Error)
		if job.Status != "completed" {
			os.Exit(1)
		}
		return
	}
}

func call(client *http.Client, method, url, secret string, out any) (int, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Admin-Secret", secret)
	req.Header.Set("Authorization", "Bearer "+secret)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
