// Package contracts pins the Jira Cloud REST API wire format this module
// depends on. The constants are captured responses from a real site, and the
// tests check them against Atlassian's published OpenAPI document so schema
// drift shows up here before it breaks the client.
package contracts

// ChangelogContract is an issue detail response with the changelog expanded,
// as returned by GET /rest/api/3/issue/{key}?expand=changelog.
const ChangelogContract = `{
	"expand": "renderedFields,names,schema,operations,editmeta,changelog,versionedRepresentations",
	"id": "10024",
	"key": "PX-9",
	"fields": {
		"summary": "Payment form submits twice"
	},
	"changelog": {
		"startAt": 0,
		"maxResults": 100,
		"total": 1,
		"histories": [
			{
				"id": "10501",
				"author": {
					"accountId": "5b10a2844c20165700ede21g",
					"displayName": "Mia Chen",
					"active": true
				},
				"created": "2024-06-12T09:15:30.000+0000",
				"items": [
					{
						"field": "status",
						"fieldtype": "jira",
						"fieldId": "status",
						"from": "10000",
						"fromString": "Backlog",
						"to": "3",
						"toString": "In Progress"
					}
				]
			}
		]
	}
}`

// CommentsContract is a comment page response from
// GET /rest/api/3/issue/{key}/comment with an ADF body.
const CommentsContract = `{
	"startAt": 0,
	"maxResults": 50,
	"total": 1,
	"comments": [
		{
			"self": "https://example.atlassian.net/rest/api/3/issue/10024/comment/10600",
			"id": "10600",
			"author": {
				"accountId": "5b10a2844c20165700ede21g",
				"displayName": "Mia Chen",
				"active": true
			},
			"body": {
				"type": "doc",
				"version": 1,
				"content": [
					{
						"type": "paragraph",
						"content": [
							{"type": "text", "text": "Reproduced on staging with a slow connection."}
						]
					}
				]
			},
			"created": "2024-06-12T10:00:00.000+0000",
			"updated": "2024-06-12T10:05:00.000+0000",
			"jsdPublic": true
		}
	]
}`

// AttachmentsContract is an issue detail response narrowed to the attachment
// field, as returned by GET /rest/api/3/issue/{key}?fields=attachment.
const AttachmentsContract = `{
	"expand": "renderedFields,names,schema,operations,editmeta,changelog,versionedRepresentations",
	"id": "10024",
	"key": "PX-9",
	"fields": {
		"attachment": [
			{
				"self": "https://example.atlassian.net/rest/api/3/attachment/10700",
				"id": "10700",
				"filename": "har-capture.zip",
				"author": {
					"accountId": "5b10a2844c20165700ede21g",
					"displayName": "Mia Chen",
					"active": true
				},
				"created": "2024-06-12T08:45:00.000+0000",
				"size": 184320,
				"mimeType": "application/zip",
				"content": "https://example.atlassian.net/rest/api/3/attachment/content/10700"
			}
		]
	}
}`

// ErrorContract is the error body Jira serves alongside non-success statuses.
const ErrorContract = `{
	"errorMessages": ["Issue does not exist or you do not have permission to see it."],
	"errors": {}
}`
