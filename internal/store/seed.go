package store

import (
	"context"
	"fmt"
)

type frameworkDef struct {
	name        string
	shortName   string
	version     string
	description string
}

var frameworkDefs = []frameworkDef{
	{
		name:        "ISO/IEC 27001:2022",
		shortName:   "ISO27001",
		version:     "2022",
		description: "International standard for information security management systems",
	},
	{
		name:        "BSI IT-Grundschutz Kompendium",
		shortName:   "BSI",
		version:     "Edition 6 (2022)",
		description: "German Federal Office for Information Security - IT baseline protection",
	},
	{
		name:        "BSI Cloud Computing Compliance Criteria Catalogue",
		shortName:   "C5",
		version:     "2020",
		description: "BSI C5:2020 cloud security criteria",
	},
}

type seedControl struct {
	id       string
	title    string
	category string
}

// ISO 27001:2022 Annex A controls
var isoControls = []seedControl{
	{"A.5.1", "Policies for information security", "Organizational"},
	{"A.5.2", "Information security roles and responsibilities", "Organizational"},
	{"A.5.3", "Segregation of duties", "Organizational"},
	{"A.5.4", "Management responsibilities", "Organizational"},
	{"A.5.5", "Contact with authorities", "Organizational"},
	{"A.5.6", "Contact with special interest groups", "Organizational"},
	{"A.5.7", "Threat intelligence", "Organizational"},
	{"A.5.8", "Information security in project management", "Organizational"},
	{"A.5.9", "Inventory of information and other associated assets", "Organizational"},
	{"A.5.10", "Acceptable use of information and other associated assets", "Organizational"},
	{"A.5.11", "Return of assets", "Organizational"},
	{"A.5.12", "Classification of information", "Organizational"},
	{"A.5.13", "Labelling of information", "Organizational"},
	{"A.5.14", "Information transfer", "Organizational"},
	{"A.5.15", "Access control", "Organizational"},
	{"A.5.16", "Identity management", "Organizational"},
	{"A.5.17", "Authentication information", "Organizational"},
	{"A.5.18", "Access rights", "Organizational"},
	{"A.5.19", "Information security in supplier relationships", "Organizational"},
	{"A.5.20", "Addressing information security within supplier agreements", "Organizational"},
	{"A.5.21", "Managing information security in the ICT supply chain", "Organizational"},
	{"A.5.22", "Monitoring, review and change management of supplier services", "Organizational"},
	{"A.5.23", "Information security for use of cloud services", "Organizational"},
	{"A.5.24", "Information security incident management planning and preparation", "Organizational"},
	{"A.5.25", "Assessment and decision on information security events", "Organizational"},
	{"A.5.26", "Response to information security incidents", "Organizational"},
	{"A.5.27", "Learning from information security incidents", "Organizational"},
	{"A.5.28", "Collection of evidence", "Organizational"},
	{"A.5.29", "Information security during disruption", "Organizational"},
	{"A.5.30", "ICT readiness for business continuity", "Organizational"},
	{"A.5.31", "Legal, statutory, regulatory and contractual requirements", "Organizational"},
	{"A.5.32", "Intellectual property rights", "Organizational"},
	{"A.5.33", "Protection of records", "Organizational"},
	{"A.5.34", "Privacy and protection of PII", "Organizational"},
	{"A.5.35", "Independent review of information security", "Organizational"},
	{"A.5.36", "Compliance with policies, rules and standards for information security", "Organizational"},
	{"A.5.37", "Documented operating procedures", "Organizational"},
	{"A.6.1", "Screening", "People"},
	{"A.6.2", "Terms and conditions of employment", "People"},
	{"A.6.3", "Information security awareness, education and training", "People"},
	{"A.6.4", "Disciplinary process", "People"},
	{"A.6.5", "Responsibilities after termination or change of employment", "People"},
	{"A.6.6", "Confidentiality or non-disclosure agreements", "People"},
	{"A.6.7", "Remote working", "People"},
	{"A.6.8", "Information security event reporting", "People"},
	{"A.7.1", "Physical security perimeters", "Physical"},
	{"A.7.2", "Physical entry", "Physical"},
	{"A.7.3", "Securing offices, rooms and facilities", "Physical"},
	{"A.7.4", "Physical security monitoring", "Physical"},
	{"A.7.5", "Protecting against physical and environmental threats", "Physical"},
	{"A.7.6", "Working in secure areas", "Physical"},
	{"A.7.7", "Clear desk and clear screen", "Physical"},
	{"A.7.8", "Equipment siting and protection", "Physical"},
	{"A.7.9", "Security of assets off-premises", "Physical"},
	{"A.7.10", "Storage media", "Physical"},
	{"A.7.11", "Supporting utilities", "Physical"},
	{"A.7.12", "Cabling security", "Physical"},
	{"A.7.13", "Equipment maintenance", "Physical"},
	{"A.7.14", "Secure disposal or re-use of equipment", "Physical"},
	{"A.8.1", "User endpoint devices", "Technological"},
	{"A.8.2", "Privileged access rights", "Technological"},
	{"A.8.3", "Information access restriction", "Technological"},
	{"A.8.4", "Access to source code", "Technological"},
	{"A.8.5", "Secure authentication", "Technological"},
	{"A.8.6", "Capacity management", "Technological"},
	{"A.8.7", "Protection against malware", "Technological"},
	{"A.8.8", "Management of technical vulnerabilities", "Technological"},
	{"A.8.9", "Configuration management", "Technological"},
	{"A.8.10", "Information deletion", "Technological"},
	{"A.8.11", "Data masking", "Technological"},
	{"A.8.12", "Data leakage prevention", "Technological"},
	{"A.8.13", "Information backup", "Technological"},
	{"A.8.14", "Redundancy of information processing facilities", "Technological"},
	{"A.8.15", "Logging", "Technological"},
	{"A.8.16", "Monitoring activities", "Technological"},
	{"A.8.17", "Clock synchronization", "Technological"},
	{"A.8.18", "Use of privileged utility programs", "Technological"},
	{"A.8.19", "Installation of software on operational systems", "Technological"},
	{"A.8.20", "Networks security", "Technological"},
	{"A.8.21", "Security of network services", "Technological"},
	{"A.8.22", "Segregation of networks", "Technological"},
	{"A.8.23", "Web filtering", "Technological"},
	{"A.8.24", "Use of cryptography", "Technological"},
	{"A.8.25", "Secure development life cycle", "Technological"},
	{"A.8.26", "Application security requirements", "Technological"},
	{"A.8.27", "Secure system architecture and engineering principles", "Technological"},
	{"A.8.28", "Secure coding", "Technological"},
	{"A.8.29", "Security testing in development and acceptance", "Technological"},
	{"A.8.30", "Outsourced development", "Technological"},
	{"A.8.31", "Separation of development, test and production environments", "Technological"},
	{"A.8.32", "Change management", "Technological"},
	{"A.8.33", "Test information", "Technological"},
	{"A.8.34", "Protection of information systems during audit testing", "Technological"},
}

// ISO 27001:2022 management clause titles, used when a mapping
// references a bare clause number
var isoClauseTitles = map[string]string{
	"4.1":  "Understanding the organization and its context",
	"4.2":  "Understanding the needs and expectations of interested parties",
	"4.3":  "Determining the scope of the ISMS",
	"4.4":  "Information security management system",
	"5.1":  "Leadership and commitment",
	"5.2":  "Policy",
	"5.3":  "Organizational roles, responsibilities and authorities",
	"6.1":  "Actions to address risks and opportunities",
	"6.2":  "Information security objectives and planning to achieve them",
	"6.3":  "Planning of changes",
	"7.1":  "Resources",
	"7.2":  "Competence",
	"7.3":  "Awareness",
	"7.4":  "Communication",
	"7.5":  "Documented information",
	"8.1":  "Operational planning and control",
	"8.2":  "Information security risk assessment",
	"8.3":  "Information security risk treatment",
	"9.1":  "Monitoring, measurement, analysis and evaluation",
	"9.2":  "Internal audit",
	"9.3":  "Management review",
	"10.1": "Continual improvement",
	"10.2": "Nonconformity and corrective action",
}

// SeedStats summarizes what a seed run created
type SeedStats struct {
	FrameworksAdded int
	ControlsAdded   int
}

// Seed creates the built-in frameworks and the ISO 27001 Annex A
// controls. Seeding is idempotent: existing rows are kept, and clause
// titles left as placeholders by earlier imports are repaired.
func (s *Store) Seed(ctx context.Context) (SeedStats, error) {
	var stats SeedStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, def := range frameworkDefs {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO frameworks (name, short_name, version, description)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(short_name) DO NOTHING`,
			def.name, def.shortName, def.version, def.description)
		if err != nil {
			return stats, fmt.Errorf("seed framework %s: %w", def.shortName, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.FrameworksAdded++
		}
	}

	var isoID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM frameworks WHERE short_name = 'ISO27001'`).Scan(&isoID); err != nil {
		return stats, fmt.Errorf("seed: resolve ISO27001: %w", err)
	}

	for _, c := range isoControls {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO controls (framework_id, control_id, title, category)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(framework_id, control_id) DO NOTHING`,
			isoID, c.id, c.title, c.category)
		if err != nil {
			return stats, fmt.Errorf("seed control %s: %w", c.id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.ControlsAdded++
		}
	}

	// Repair placeholder titles on clauses created by imports that ran
	// before seeding.
	for clauseID, title := range isoClauseTitles {
		if _, err := tx.ExecContext(ctx,
			`UPDATE controls SET title = ? WHERE framework_id = ? AND control_id = ? AND title != ?`,
			title, isoID, clauseID, title); err != nil {
			return stats, fmt.Errorf("seed clause %s: %w", clauseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit seed: %w", err)
	}
	return stats, nil
}
