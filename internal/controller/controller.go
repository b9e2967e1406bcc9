package controller

import (
	"leadflow_backend/pkg/activity"
	"leadflow_backend/pkg/assignment"
	"leadflow_backend/pkg/csvimport"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/report"
	"leadflow_backend/pkg/telephony"
)

var (
	activityLogger    *activity.Logger
	assignmentService *assignment.Service
	reportService     *report.Service
	telephonyService  *telephony.Service
	leadImporter      *csvimport.Importer
)

// InitControllers wires the service layer once the database is up.
func InitControllers(provider telephony.Provider, callerID string) {
	db := database.GetDB()

	activityLogger = activity.NewLogger(db)
	assignmentService = assignment.NewService(db, activityLogger)
	reportService = report.NewService(db)
	telephonyService = telephony.NewService(db, provider, callerID, activityLogger)
	leadImporter = csvimport.NewImporter(db, activityLogger)
}
