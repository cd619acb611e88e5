package indeed

const jobFields = `
fragment JobFields on Job {
  key
  title
  url
  datePublished
  location {
    formatted { long }
    latitude
    longitude
  }
  employer { name }
  source { name }
  attributes { label }
  compensation {
    baseSalary {
      unitOfWork
      range {
        __typename
        ... on AtLeast { min }
        ... on AtMost { max }
        ... on Exactly { value }
        ... on Range { min max }
      }
    }
    currencyCode
    formattedText
  }
}
`

const searchQuery = `
query JobSearch(
  $what: String
  $where: String
  $country: String
  $radius: Int
  $fromAge: Int
  $jobType: String
  $directHire: Boolean
  $limit: Int
  $cursor: String
) {
  jobSearch(
    what: $what
    location: { where: $where, radius: $radius, radiusUnit: MILES }
    country: $country
    filters: { datePosted: $fromAge, jobType: $jobType, directHire: $directHire }
    sort: DATE
    limit: $limit
    cursor: $cursor
  ) {
    pageInfo { nextCursor }
    results {
      job { ...JobFields }
    }
  }
}
` + jobFields

const jobDataQuery = `
query JobData($keys: [ID!]!) {
  jobData(jobKeys: $keys) {
    results {
      job {
        ...JobFields
        description { html }
      }
    }
  }
}
` + jobFields
