package logger

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type componentStat struct {
	warns  int64
	errors int64
}

type outputStat struct {
	records int64
	batches int64
}

var (
	countriesProcessed int64
	omissionsRecorded  int64
	reportWrites       int64
	reportBytes        int64
	components         sync.Map // map[string]*componentStat
	outputs            sync.Map // map[string]*outputStat
)

func recordWarn(component string) {
	v, _ := components.LoadOrStore(component, &componentStat{})
	atomic.AddInt64(&v.(*componentStat).warns, 1)
}

func recordError(component string) {
	v, _ := components.LoadOrStore(component, &componentStat{})
	atomic.AddInt64(&v.(*componentStat).errors, 1)
}

// IncrementCountryProcessed bumps the run-level counter of countries that
// produced a report.
func IncrementCountryProcessed() {
	atomic.AddInt64(&countriesProcessed, 1)
}

// IncrementOmission bumps the run-level counter of audit-trail omissions.
func IncrementOmission() {
	atomic.AddInt64(&omissionsRecorded, 1)
}

// IncrementReportWrite records one persisted report artifact of the given
// size in bytes.
func IncrementReportWrite(size int64) {
	atomic.AddInt64(&reportWrites, 1)
	atomic.AddInt64(&reportBytes, size)
}

// RecordComponentOutput accumulates how many records an analysis stage
// emitted in the current batch.
func RecordComponentOutput(name string, records int) {
	v, _ := outputs.LoadOrStore(name, &outputStat{})
	stat := v.(*outputStat)
	atomic.AddInt64(&stat.records, int64(records))
	atomic.AddInt64(&stat.batches, 1)
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and pipeline statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

// LogFinalReport emits one last statistics report, for batch runs that exit
// before a periodic tick fires.
func LogFinalReport(ctx context.Context, log *Log) {
	logReport(ctx, log)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	var warns, errors int64
	componentData := map[string]map[string]int64{}
	components.Range(func(k, v any) bool {
		name := k.(string)
		cs := v.(*componentStat)
		w := atomic.LoadInt64(&cs.warns)
		e := atomic.LoadInt64(&cs.errors)
		warns += w
		errors += e
		componentData[name] = map[string]int64{"warns": w, "errors": e}
		return true
	})

	outputData := map[string]map[string]int64{}
	outputs.Range(func(k, v any) bool {
		name := k.(string)
		os := v.(*outputStat)
		outputData[name] = map[string]int64{
			"records": atomic.LoadInt64(&os.records),
			"batches": atomic.LoadInt64(&os.batches),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	fields := Fields{
		"countries_processed": atomic.LoadInt64(&countriesProcessed),
		"omissions_recorded":  atomic.LoadInt64(&omissionsRecorded),
		"report_writes":       atomic.LoadInt64(&reportWrites),
		"report_bytes":        atomic.LoadInt64(&reportBytes),
		"warns":               warns,
		"errors":              errors,
		"components":          componentData,
		"outputs":             outputData,
		"goroutines":          runtime.NumGoroutine(),
		"cpu_percent":         cpuPct,
		"memory_mb":           int64(memStats.Used) / 1024 / 1024,
		"disk_mb":             int64(diskStats.Used) / 1024 / 1024,
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("CountriesProcessed"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&countriesProcessed)))},
		cwtypes.MetricDatum{MetricName: aws.String("OmissionsRecorded"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&omissionsRecorded)))},
		cwtypes.MetricDatum{MetricName: aws.String("ReportWrites"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&reportWrites)))},
		cwtypes.MetricDatum{MetricName: aws.String("ReportBytes"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(atomic.LoadInt64(&reportBytes)))},
		cwtypes.MetricDatum{MetricName: aws.String("Warns"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(warns))},
		cwtypes.MetricDatum{MetricName: aws.String("Errors"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(errors))},
	)

	for name, stats := range outputData {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String("StageRecords"),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{{Name: aws.String("Stage"), Value: aws.String(name)}},
			Value:      aws.Float64(float64(stats["records"])),
		})
	}

	publishMetrics(ctx, data)
}
