// Package seed generates a synthetic tender/bid corpus for demos and model
// training, including deliberately suspicious bids.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/securetender/bidguard/internal/models"
)

var companies = []string{
	"TechSolutions Corp", "InnovateIT Ltd", "SecureCloud Systems",
	"DataDrive Technologies", "CyberSafe Solutions", "CloudFirst Inc",
	"SmartTech Partners", "DigitalEdge Corp", "NextGen Systems",
	"TechFlow Solutions", "InfoSec Dynamics", "CloudCore Technologies",
}

var emailDomains = []string{"tech.com", "solutions.net", "corp.io", "systems.org", "inc.com"}

var proposalTemplates = []string{
	"We propose a comprehensive solution with %[1]d years of experience in %[2]s. Our approach includes %[3]s, %[4]s, and %[5]s with guaranteed delivery within timeline.",
	"Our company offers cutting-edge %[6]s solutions with expertise in %[2]s. We provide %[3]s, %[4]s, and 24/7 support for optimal performance.",
	"We specialize in %[2]s with proven track record of %[1]d years. Our solution features %[6]s, %[3]s, and comprehensive %[4]s implementation.",
	"Professional %[6]s implementation with focus on %[2]s. Our team delivers %[3]s, advanced %[4]s, and ongoing maintenance support.",
	"Enterprise-grade %[6]s solution for %[2]s requirements. We offer %[3]s, robust %[4]s, and scalable architecture design.",
}

var technologies = []string{"cloud computing", "AI integration", "blockchain technology", "IoT systems", "machine learning"}
var domains = []string{"cybersecurity", "data analytics", "infrastructure management", "digital transformation", "automation"}
var serviceFeatures = []string{"real-time monitoring", "advanced encryption", "automated deployment", "performance optimization", "compliance management"}

var tenderTitles = []string{
	"Enterprise Network Security Upgrade",
	"Data Center Migration Services",
	"Citywide IT Infrastructure Modernization",
	"Document Management System Procurement",
}

// Generator produces deterministic synthetic data for a given seed.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator creates a Generator. The seed fixes the generated corpus.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now(),
	}
}

// Tenders generates n tenders with plausible estimated values.
func (g *Generator) Tenders(n int) []*models.Tender {
	tenders := make([]*models.Tender, n)
	for i := 0; i < n; i++ {
		value := 50000 + g.rng.Float64()*450000
		tenders[i] = &models.Tender{
			Title:          tenderTitles[i%len(tenderTitles)],
			Description:    "Procurement of " + strings.ToLower(tenderTitles[i%len(tenderTitles)]),
			Department:     "IT Services",
			EstimatedValue: value,
			Deadline:       g.now.AddDate(0, 1, 0).Format("2006-01-02"),
		}
	}
	return tenders
}

// Bids generates n bids spread across the given tenders. Most bids are
// competitive (80-120% of estimated value, business-hours submission); every
// seventh is a low-ball offer with a thin proposal submitted at night, and
// every fifth is inflated.
func (g *Generator) Bids(tenders []*models.Tender, n int) []*models.Bid {
	bids := make([]*models.Bid, n)
	for i := 0; i < n; i++ {
		tender := tenders[g.rng.Intn(len(tenders))]
		company := companies[g.rng.Intn(len(companies))]
		email := fmt.Sprintf("contact@%s.%s",
			strings.ReplaceAll(strings.ToLower(company), " ", ""),
			emailDomains[g.rng.Intn(len(emailDomains))])

		var amount float64
		var proposal string
		var submitted time.Time
		switch {
		case i%7 == 0:
			// Suspiciously low bid, minimal proposal, odd hours
			amount = tender.EstimatedValue * (0.3 + g.rng.Float64()*0.3)
			proposal = "Best price."
			submitted = g.submissionTime(2 + g.rng.Intn(3))
		case i%5 == 0:
			amount = tender.EstimatedValue * (1.5 + g.rng.Float64()*0.5)
			proposal = g.proposal()
			submitted = g.submissionTime(9 + g.rng.Intn(9))
		default:
			amount = tender.EstimatedValue * (0.8 + g.rng.Float64()*0.4)
			proposal = g.proposal()
			submitted = g.submissionTime(9 + g.rng.Intn(9))
		}

		bids[i] = &models.Bid{
			TenderID:     tender.ID,
			CompanyName:  company,
			ContactEmail: email,
			BidAmount:    amount,
			Proposal:     proposal,
			SubmittedAt:  submitted.Format("2006-01-02 15:04:05"),
		}
	}
	return bids
}

func (g *Generator) proposal() string {
	template := proposalTemplates[g.rng.Intn(len(proposalTemplates))]
	return fmt.Sprintf(template,
		3+g.rng.Intn(18),
		domains[g.rng.Intn(len(domains))],
		serviceFeatures[g.rng.Intn(len(serviceFeatures))],
		serviceFeatures[g.rng.Intn(len(serviceFeatures))],
		serviceFeatures[g.rng.Intn(len(serviceFeatures))],
		technologies[g.rng.Intn(len(technologies))],
	)
}

func (g *Generator) submissionTime(hour int) time.Time {
	day := g.now.AddDate(0, 0, -g.rng.Intn(30))
	return time.Date(day.Year(), day.Month(), day.Day(), hour, g.rng.Intn(60), 0, 0, time.UTC)
}
