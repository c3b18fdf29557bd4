package embedding

// referenceCorpus is the fixed corpus the BM25 encoder is fitted on at
// startup. It approximates the term statistics of B2B product and sales
// pages, which is the content this system ingests.
var referenceCorpus = []string{
	"Our platform helps teams automate their workflow and save time on repetitive tasks.",
	"Pricing starts at $49 per month for the starter plan with unlimited projects.",
	"The enterprise plan includes dedicated support, single sign-on, and a service level agreement.",
	"Request a demo to see how the product fits your team's workflow.",
	"Start your free trial today, no credit card required.",
	"Integrations are available for Slack, Salesforce, HubSpot, and hundreds of other tools.",
	"Our customers report a forty percent reduction in onboarding time after switching.",
	"Security is built in: data is encrypted at rest and in transit, with SOC 2 compliance.",
	"The API lets developers build custom automations on top of the platform.",
	"Compare plans to find the right features for your business, from startups to enterprises.",
	"Analytics dashboards give managers real-time visibility into team performance.",
	"Migration from legacy systems is handled by our onboarding specialists at no extra cost.",
	"Annual billing saves twenty percent compared to paying month to month.",
	"User roles and permissions keep sensitive data visible only to the right people.",
	"The mobile app keeps field teams connected with offline support and push notifications.",
	"Customer success stories from retail, healthcare, and financial services companies.",
	"Frequently asked questions about billing, upgrades, cancellations, and refunds.",
	"Contact our sales team to discuss volume discounts and custom contracts.",
	"Product updates ship every two weeks with improvements driven by customer feedback.",
	"Uptime has exceeded 99.9 percent over the last twelve months across all regions.",
	"Workflows can be customized with templates, triggers, and conditional logic.",
	"Documentation, tutorials, and a community forum help new users get productive fast.",
	"Data can be exported at any time in CSV and JSON formats; there is no lock-in.",
	"The free tier supports up to three users and one active project.",
	"Schedule a call with a product specialist to walk through advanced features.",
	"Reports can be shared with stakeholders as scheduled email digests or live links.",
	"Role-based onboarding checklists shorten the ramp-up period for new hires.",
	"Our support team answers within one business hour on all paid plans.",
	"Browse the changelog for recent features, fixes, and performance improvements.",
	"Book a personalized walkthrough and get a tailored quote for your organization.",
}
