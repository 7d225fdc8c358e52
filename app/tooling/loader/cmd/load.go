package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	csvFile string
	mine    bool
)

// loadCmd represents the load command.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load telemetry readings from a CSV file and submit them",
	Run: func(cmd *cobra.Command, args []string) {
		if err := loadAndSubmit(csvFile); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVarP(&csvFile, "file", "f", "power_data.csv", "Path to the CSV file with readings.")
	loadCmd.Flags().BoolVarP(&mine, "mine", "m", true, "Mine a block after each accepted reading.")
}

// telemetry is the payload the node expects on the submit endpoint.
type telemetry struct {
	NodeID   string         `json:"node_id"`
	Voltage  []float64      `json:"voltage_vector"`
	Current  []float64      `json:"current_vector"`
	Power    []float64      `json:"power_vector"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func loadAndSubmit(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("unable to read csv header: %w", err)
	}

	col := make(map[string]int)
	for i, name := range header {
		col[name] = i
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("unable to read csv row: %w", err)
		}

		t, err := rowToTelemetry(col, row)
		if err != nil {
			return err
		}

		if err := submit(t); err != nil {
			fmt.Printf("error submitting data: %v\n", err)
			continue
		}

		time.Sleep(time.Duration(delay) * time.Millisecond)
	}

	return nil
}

func rowToTelemetry(col map[string]int, row []string) (telemetry, error) {
	field := func(name string) string {
		i, exists := col[name]
		if !exists || i >= len(row) {
			return ""
		}
		return row[i]
	}

	vector := func(prefix string) ([]float64, error) {
		var vec []float64
		for _, name := range []string{prefix + "_1", prefix + "_2", prefix + "_3"} {
			v, err := strconv.ParseFloat(field(name), 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
			vec = append(vec, v)
		}
		return vec, nil
	}

	voltage, err := vector("voltage")
	if err != nil {
		return telemetry{}, err
	}
	current, err := vector("current")
	if err != nil {
		return telemetry{}, err
	}
	power, err := vector("power")
	if err != nil {
		return telemetry{}, err
	}

	// The sampling rate is numeric in the source data, so send it as a
	// number when it parses as one.
	var samplingRate any = field("sampling_rate")
	if v, err := strconv.ParseFloat(field("sampling_rate"), 64); err == nil {
		samplingRate = v
	}

	t := telemetry{
		NodeID:  field("node_id"),
		Voltage: voltage,
		Current: current,
		Power:   power,
		Metadata: map[string]any{
			"location":         field("location"),
			"measurement_type": field("measurement_type"),
			"sampling_rate":    samplingRate,
			"timestamp":        field("timestamp"),
		},
	}

	return t, nil
}

func submit(t telemetry) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/telemetry/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("submitted reading for node %s: %s\n", t.NodeID, string(body))

	if resp.StatusCode == http.StatusCreated && mine {
		mineResp, err := http.Get(fmt.Sprintf("%s/v1/mining/run", url))
		if err != nil {
			return err
		}
		defer mineResp.Body.Close()

		mineBody, _ := io.ReadAll(mineResp.Body)
		fmt.Printf("mining result: %s\n", string(mineBody))
	}

	return nil
}
