package config

type WorkerKeyStruct struct {
	GenerateReportsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	GenerateReportsQueue: "generate_reports_queue",
}
