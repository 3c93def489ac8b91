package gateway

const userProfileQuery = `
query User {
	currentUser {
		avatarUrl
		email
		id
		lastActivityOn
		name
		username
	}
}`

const userProjectsQuery = `
query UserProjects {
	currentUser {
		groups(first: 3) {
			nodes {
				avatarUrl
				id
				name
				path
				webUrl
				fullPath
				parent {
					projects(first: 5) {
						nodes {
							avatarUrl
							createdAt
							description
							fullPath
							id
							lastActivityAt
							name
							webUrl
							repository {
								tree {
									lastCommit {
										committedDate
										authorGravatar
										authorName
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`
